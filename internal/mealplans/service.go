package mealplans

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fdg312/mealcraft/internal/export"
	"github.com/fdg312/mealcraft/internal/storage"
	"github.com/fdg312/mealcraft/internal/week"
)

var ErrValidation = errors.New("validation failed")

// Service handles meal plans business logic.
type Service struct {
	storage   storage.MealPlansStorage
	generator *export.Generator
	logger    *zap.Logger
}

// NewService creates a new meal plans service.
func NewService(st storage.MealPlansStorage, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage:   st,
		generator: export.NewGenerator(st),
		logger:    logger.Named("mealplans"),
	}
}

// ListWeek returns the entries of the week starting at weekStart (a Monday).
func (s *Service) ListWeek(ctx context.Context, weekStart string) ([]Entry, error) {
	if weekStart == "" {
		return nil, fmt.Errorf("%w: week_start is required", ErrValidation)
	}
	if err := ValidateWeekStart(weekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	rows, err := s.storage.ListByWeek(ctx, weekStart)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, len(rows))
	for i, row := range rows {
		out[i] = toDTO(row)
	}
	return out, nil
}

// AddEntry creates the entry or replaces the recipe of an occupied slot.
func (s *Service) AddEntry(ctx context.Context, req CreateEntryRequest) (Entry, error) {
	if err := req.Validate(); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	row, err := s.storage.Upsert(ctx, storage.MealPlanEntryUpsert{
		WeekStart: req.WeekStart,
		DayOfWeek: req.DayOfWeek,
		MealSlot:  req.MealSlot,
		RecipeID:  req.RecipeID,
	})
	if err != nil {
		return Entry{}, err
	}

	s.logger.Info("meal plan entry saved",
		zap.Int64("entry_id", row.ID),
		zap.String("week_start", row.WeekStart),
		zap.Int("day_of_week", row.DayOfWeek),
		zap.String("meal_slot", row.MealSlot),
		zap.Int64("recipe_id", row.RecipeID),
	)
	return toDTO(row), nil
}

func (s *Service) DeleteEntry(ctx context.Context, id int64) error {
	return s.storage.Delete(ctx, id)
}

// ExportWeek renders the week as pdf, csv or html.
func (s *Service) ExportWeek(ctx context.Context, weekStart string, format export.Format) ([]byte, error) {
	if err := ValidateWeekStart(weekStart); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	start, err := week.ParseISODate(weekStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.generator.Week(ctx, start, format)
}

func toDTO(e storage.MealPlanEntry) Entry {
	return Entry{
		ID:             e.ID,
		WeekStart:      e.WeekStart,
		DayOfWeek:      e.DayOfWeek,
		MealSlot:       e.MealSlot,
		RecipeID:       e.RecipeID,
		RecipeName:     e.RecipeName,
		RecipeCategory: e.RecipeCategory,
		RecipeFotoURL:  e.RecipeFotoURL,
	}
}
