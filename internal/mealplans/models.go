package mealplans

import (
	"fmt"

	"github.com/fdg312/mealcraft/internal/slots"
	"github.com/fdg312/mealcraft/internal/week"
)

// Entry is one filled calendar cell: a recipe placed in a (day, slot) of a week.
type Entry struct {
	ID             int64   `json:"id"`
	WeekStart      string  `json:"week_start"`
	DayOfWeek      int     `json:"day_of_week"`
	MealSlot       string  `json:"meal_slot"`
	RecipeID       int64   `json:"recipe_id"`
	RecipeName     string  `json:"recipe_name"`
	RecipeCategory string  `json:"recipe_category"`
	RecipeFotoURL  *string `json:"recipe_foto_url"`
}

type CreateEntryRequest struct {
	WeekStart string `json:"week_start"`
	DayOfWeek int    `json:"day_of_week"`
	MealSlot  string `json:"meal_slot"`
	RecipeID  int64  `json:"recipe_id"`
}

type ListResponse struct {
	Status  string  `json:"status"`
	Entries []Entry `json:"entries"`
}

type EntryResponse struct {
	Status string `json:"status"`
	Entry  Entry  `json:"entry"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (r *CreateEntryRequest) Validate() error {
	if r.WeekStart == "" {
		return fmt.Errorf("week_start is required")
	}
	if err := ValidateWeekStart(r.WeekStart); err != nil {
		return err
	}
	if !slots.IsValidDay(r.DayOfWeek) {
		return fmt.Errorf("day_of_week must be 0-6")
	}
	if !slots.IsValidSlot(r.MealSlot) {
		return fmt.Errorf("meal_slot must be one of breakfast, morning_snack, lunch, afternoon_snack, dinner")
	}
	if r.RecipeID <= 0 {
		return fmt.Errorf("recipe_id must be a positive integer")
	}
	return nil
}

// ValidateWeekStart checks s is a YYYY-MM-DD Monday.
func ValidateWeekStart(s string) error {
	if _, err := week.ParseISODate(s); err != nil {
		return fmt.Errorf("week_start must be a date in YYYY-MM-DD format")
	}
	if !week.IsWeekStart(s) {
		return fmt.Errorf("week_start must be a Monday")
	}
	return nil
}
