package mealplans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fdg312/meal-planner/internal/storage"
	"github.com/fdg312/meal-planner/internal/validation"
)

const dateLayout = "2006-01-02"

var (
	ErrValidation    = errors.New("validation failed")
	ErrUnknownRecipe = errors.New("recipe not found")
)

// RecipeChecker confirms that recipe IDs belong to the owner.
type RecipeChecker interface {
	Exists(ctx context.Context, ownerUserID string, ids []uuid.UUID) (bool, error)
}

// Service handles meal plans business logic.
type Service struct {
	storage      storage.MealPlansStorage
	recipes      RecipeChecker
	validator    *validation.Validator
	maxRangeDays int
}

// NewService creates a new meal plans service.
func NewService(storage storage.MealPlansStorage, recipes RecipeChecker, maxRangeDays int) *Service {
	if maxRangeDays <= 0 {
		maxRangeDays = 31
	}
	return &Service{
		storage:      storage,
		recipes:      recipes,
		validator:    validation.New(),
		maxRangeDays: maxRangeDays,
	}
}

// Get returns the slots in [from, to].
func (s *Service) Get(ctx context.Context, ownerUserID, from, to string) ([]MealSlotDTO, error) {
	if err := s.checkRange(from, to); err != nil {
		return nil, err
	}
	slots, err := s.storage.ListSlots(ctx, ownerUserID, from, to)
	if err != nil {
		return nil, err
	}
	return toDTOs(slots), nil
}

// Replace atomically replaces the slots of a date range.
func (s *Service) Replace(ctx context.Context, ownerUserID string, req ReplaceMealPlanRequest) ([]MealSlotDTO, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if err := req.checkSlots(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if err := s.checkRange(req.From, req.To); err != nil {
		return nil, err
	}

	// Convert request slots to storage upserts
	upserts := make([]storage.MealSlotUpsert, len(req.Slots))
	var recipeIDs []uuid.UUID
	for i, slot := range req.Slots {
		upserts[i] = storage.MealSlotUpsert{
			Date:     slot.Date,
			MealType: slot.MealType,
			Servings: slot.Servings,
		}
		if slot.RecipeID != nil {
			id := uuid.MustParse(*slot.RecipeID)
			upserts[i].RecipeID = &id
			recipeIDs = append(recipeIDs, id)
		}
	}

	if s.recipes != nil && len(recipeIDs) > 0 {
		ok, err := s.recipes.Exists(ctx, ownerUserID, recipeIDs)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrUnknownRecipe
		}
	}

	created, err := s.storage.ReplaceSlots(ctx, ownerUserID, req.From, req.To, upserts)
	if err != nil {
		return nil, err
	}
	return toDTOs(created), nil
}

// Delete removes every slot in [from, to].
func (s *Service) Delete(ctx context.Context, ownerUserID, from, to string) error {
	if err := s.checkRange(from, to); err != nil {
		return err
	}
	return s.storage.DeleteSlots(ctx, ownerUserID, from, to)
}

// GetToday returns the slots of a single date, today (UTC) by default.
func (s *Service) GetToday(ctx context.Context, ownerUserID string, dateStr string) (string, []MealSlotDTO, error) {
	if dateStr == "" {
		dateStr = time.Now().UTC().Format(dateLayout)
	}
	slots, err := s.Get(ctx, ownerUserID, dateStr, dateStr)
	if err != nil {
		return "", nil, err
	}
	return dateStr, slots, nil
}

func (s *Service) checkRange(from, to string) error {
	fromDate, err := time.Parse(dateLayout, from)
	if err != nil {
		return fmt.Errorf("%w: invalid date format, expected YYYY-MM-DD", ErrValidation)
	}
	toDate, err := time.Parse(dateLayout, to)
	if err != nil {
		return fmt.Errorf("%w: invalid date format, expected YYYY-MM-DD", ErrValidation)
	}
	if fromDate.After(toDate) {
		return fmt.Errorf("%w: from must not be after to", ErrValidation)
	}
	if days := int(toDate.Sub(fromDate).Hours()/24) + 1; days > s.maxRangeDays {
		return fmt.Errorf("%w: date range cannot exceed %d days", ErrValidation, s.maxRangeDays)
	}
	return nil
}

func toDTOs(slots []storage.MealSlot) []MealSlotDTO {
	out := make([]MealSlotDTO, len(slots))
	for i, slot := range slots {
		out[i] = toSlotDTO(slot)
	}
	return out
}

func toSlotDTO(slot storage.MealSlot) MealSlotDTO {
	dto := MealSlotDTO{
		ID:        slot.ID.String(),
		Date:      slot.Date,
		MealType:  slot.MealType,
		Servings:  slot.Servings,
		CreatedAt: slot.CreatedAt,
		UpdatedAt: slot.UpdatedAt,
	}
	if slot.RecipeID != nil {
		id := slot.RecipeID.String()
		dto.RecipeID = &id
	}
	return dto
}
