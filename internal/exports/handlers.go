package exports

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fdg312/meal-planner/internal/userctx"
)

// Handlers handles HTTP requests for stored exports
type Handlers struct {
	service *Service
	logger  *zap.Logger
}

// NewHandlers creates new handlers
func NewHandlers(service *Service, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{service: service, logger: logger}
}

// HandleList handles GET /v1/shopping/exports
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	list, err := h.service.List(r.Context(), ownerUserID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list exports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list exports")
		return
	}

	baseURL := getBaseURL(r)
	dtos := make([]ExportDTO, 0, len(list))
	for i := range list {
		exp := &list[i]
		downloadURL, err := h.service.DownloadURL(r.Context(), exp, baseURL)
		if err != nil {
			h.logger.Warn("failed to build download URL", zap.String("export_id", exp.ID.String()), zap.Error(err))
		}
		dtos = append(dtos, ExportDTO{
			ID:          exp.ID,
			Format:      exp.Format,
			From:        exp.FromDate,
			To:          exp.ToDate,
			ItemCount:   exp.ItemCount,
			DownloadURL: downloadURL,
			SizeBytes:   exp.SizeBytes,
			Status:      exp.Status,
			CreatedAt:   exp.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ExportsResponse{Exports: dtos})
}

// HandleDownload handles GET /v1/shopping/exports/{id}/download
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	exportID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid export ID")
		return
	}

	exp, err := h.service.Get(r.Context(), ownerUserID, exportID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	if h.service.LocalMode() {
		w.Header().Set("Content-Type", contentType(exp.Format))
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", exp.Filename()))
		w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
		w.Write(exp.Data)
		return
	}

	downloadURL, err := h.service.DownloadURL(r.Context(), exp, getBaseURL(r))
	if err != nil {
		h.logger.Error("failed to build download URL", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to generate download URL")
		return
	}

	http.Redirect(w, r, downloadURL, http.StatusFound)
}

// HandleDelete handles DELETE /v1/shopping/exports/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	exportID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid export ID")
		return
	}

	if err := h.service.Delete(r.Context(), ownerUserID, exportID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrExportNotFound) {
		writeError(w, http.StatusNotFound, "export_not_found", "Export not found")
		return
	}
	h.logger.Error("export request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
