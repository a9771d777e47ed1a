package recipes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/fdg312/meal-planner/internal/userctx"
)

// Handler handles HTTP requests for recipes.
type Handler struct {
	service *Service
}

// NewHandler creates a new recipes handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleCreate handles POST /v1/recipes
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	var req CreateRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	recipe, err := h.service.Create(r.Context(), ownerUserID, req)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to create recipe")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(recipe)
}

// HandleList handles GET /v1/recipes?limit=&offset=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := h.service.List(r.Context(), ownerUserID, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to list recipes")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ListRecipesResponse{Recipes: list})
}

// HandleGet handles GET /v1/recipes/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid recipe ID")
		return
	}

	recipe, err := h.service.Get(r.Context(), ownerUserID, id)
	if err != nil {
		if errors.Is(err, ErrRecipeNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Recipe not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to get recipe")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(recipe)
}

// HandleDelete handles DELETE /v1/recipes/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerUserID := userctx.OwnerOrDefault(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Invalid recipe ID")
		return
	}

	if err := h.service.Delete(r.Context(), ownerUserID, id); err != nil {
		if errors.Is(err, ErrRecipeNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Recipe not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to delete recipe")
		return
	}

	w.WriteHeader(http.StatusNoContent)
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
