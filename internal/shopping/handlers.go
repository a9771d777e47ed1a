package shopping

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/fdg312/meal-planner/internal/userctx"
)

// Handler handles HTTP requests for the shopping list.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new shopping handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// HandleGetList handles GET /v1/shopping/list?from=&to=
func (h *Handler) HandleGetList(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	q := RangeQuery{
		From: strings.TrimSpace(r.URL.Query().Get("from")),
		To:   strings.TrimSpace(r.URL.Query().Get("to")),
	}
	resp, err := h.service.Generate(r.Context(), ownerUserID, q)
	if err != nil {
		h.handleError(w, err, "Failed to generate shopping list")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleToggle handles POST /v1/shopping/selection/toggle
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	resp, err := h.service.Toggle(r.Context(), ownerUserID, req)
	if err != nil {
		h.handleError(w, err, "Failed to toggle item")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleOverride handles PUT /v1/shopping/overrides
func (h *Handler) HandleOverride(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	session, err := h.service.SetOverride(r.Context(), ownerUserID, req)
	if err != nil {
		h.handleError(w, err, "Failed to update overrides")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

// HandleClearSession handles DELETE /v1/shopping/session
func (h *Handler) HandleClearSession(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	if err := h.service.ClearSession(r.Context(), ownerUserID); err != nil {
		h.handleError(w, err, "Failed to clear session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleExport handles POST /v1/shopping/export
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	var req ExportListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	result, err := h.service.Export(r.Context(), ownerUserID, req, getBaseURL(r))
	if err != nil {
		h.handleError(w, err, "Failed to export shopping list")
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleShareEmail handles POST /v1/shopping/share/email
func (h *Handler) HandleShareEmail(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	var req ShareEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	resp, err := h.service.ShareEmail(r.Context(), ownerUserID, req)
	if err != nil {
		h.handleError(w, err, "Failed to share shopping list")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleShareSMS handles POST /v1/shopping/share/sms
func (h *Handler) HandleShareSMS(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	var req ShareSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	resp, err := h.service.ShareSMS(r.Context(), ownerUserID, req)
	if err != nil {
		h.handleError(w, err, "Failed to share shopping list")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
	case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrRangeTooLarge), errors.Is(err, ErrInvalidOverride):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ErrUnknownItem):
		writeError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, ErrNothingToExport), errors.Is(err, ErrTooManyItems):
		writeError(w, http.StatusUnprocessableEntity, "nothing_to_send", err.Error())
	case errors.Is(err, ErrChannelBusy):
		writeError(w, http.StatusConflict, "channel_busy", err.Error())
	case errors.Is(err, ErrDeliveryFailed):
		h.logger.Warn("shopping delivery failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "delivery_failed", "Delivery failed, please retry")
	default:
		h.logger.Error(fallback, zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard format.
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

// getBaseURL returns the base URL for the request.
func getBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
