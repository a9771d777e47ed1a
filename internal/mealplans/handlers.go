package mealplans

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fdg312/meal-planner/internal/userctx"
)

// Handler handles HTTP requests for meal plans.
type Handler struct {
	service *Service
}

// NewHandler creates a new meal plans handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleGet handles GET /v1/meal-plan?from=&to=
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerUserID := userctx.OwnerOrDefault(ctx)

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "from and to are required")
		return
	}

	slots, err := h.service.Get(ctx, ownerUserID, from, to)
	if err != nil {
		h.writeServiceError(w, err, "Failed to get meal plan")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(GetMealPlanResponse{From: from, To: to, Slots: slots})
}

// HandleReplace handles PUT /v1/meal-plan
func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerUserID := userctx.OwnerOrDefault(ctx)

	var req ReplaceMealPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	slots, err := h.service.Replace(ctx, ownerUserID, req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to replace meal plan")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(GetMealPlanResponse{From: req.From, To: req.To, Slots: slots})
}

// HandleGetToday handles GET /v1/meal-plan/today?date=YYYY-MM-DD
func (h *Handler) HandleGetToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerUserID := userctx.OwnerOrDefault(ctx)

	date, slots, err := h.service.GetToday(ctx, ownerUserID, r.URL.Query().Get("date"))
	if err != nil {
		h.writeServiceError(w, err, "Failed to get today's meal plan")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(GetTodayResponse{Date: date, Slots: slots})
}

// HandleDelete handles DELETE /v1/meal-plan?from=&to=
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerUserID := userctx.OwnerOrDefault(ctx)

	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "from and to are required")
		return
	}

	if err := h.service.Delete(ctx, ownerUserID, from, to); err != nil {
		h.writeServiceError(w, err, "Failed to delete meal plan")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrValidation):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
	case errors.Is(err, ErrUnknownRecipe):
		writeError(w, http.StatusUnprocessableEntity, "unknown_recipe", "recipe_id must reference an existing recipe")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", fallback)
	}
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
