package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fdg312/meal-planner/internal/userctx"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleList handles GET /v1/inventory
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	items, err := h.service.List(r.Context(), ownerUserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list inventory")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ListResponse{Items: items})
}

// HandleUpsert handles PUT /v1/inventory
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	items, err := h.service.Upsert(r.Context(), ownerUserID, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to update inventory")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ListResponse{Items: items})
}

// HandleDelete handles DELETE /v1/inventory/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid inventory item ID")
		return
	}

	if err := h.service.Delete(r.Context(), ownerUserID, id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Inventory item not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete inventory item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
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
