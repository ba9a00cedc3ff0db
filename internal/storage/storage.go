package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a recipe or meal plan entry does not exist.
var ErrNotFound = errors.New("not found")

// Storage bundles the recipe and meal plan stores behind one connection.
type Storage interface {
	GetRecipesStorage() RecipesStorage
	GetMealPlansStorage() MealPlansStorage

	// Close закрывает соединение (для Postgres)
	Close() error
}

// RecipesStorage manages the recipe catalog.
type RecipesStorage interface {
	// List returns all recipes ordered by id
	List(ctx context.Context) ([]Recipe, error)
	// Get returns a recipe or ErrNotFound
	Get(ctx context.Context, id int64) (Recipe, error)
	// Create assigns an id and timestamps
	Create(ctx context.Context, recipe Recipe) (Recipe, error)
	// Update applies the non-nil fields of upd
	Update(ctx context.Context, id int64, upd RecipeUpdate) (Recipe, error)
	// Delete removes the recipe and every meal plan entry pointing at it
	Delete(ctx context.Context, id int64) error
	// SetPhotoURL replaces foto_url
	SetPhotoURL(ctx context.Context, id int64, url string) (Recipe, error)
}

type Ingredient struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"`
}

type Recipe struct {
	ID                int64
	Name              string
	Category          string
	MainIngredients   []Ingredient
	CommonIngredients []string
	Instructions      string
	PrepTime          int
	Portions          int
	FotoURL           *string
	VideoURL          *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RecipeUpdate is a partial update; nil fields are left untouched.
type RecipeUpdate struct {
	Name              *string
	Category          *string
	MainIngredients   *[]Ingredient
	CommonIngredients *[]string
	Instructions      *string
	PrepTime          *int
	Portions          *int
	FotoURL           *string
	VideoURL          *string
}

// MealPlansStorage manages weekly meal plan entries.
// At most one entry exists per (week_start, day_of_week, meal_slot).
type MealPlansStorage interface {
	// ListByWeek returns the entries of one week ordered by day and slot
	ListByWeek(ctx context.Context, weekStart string) ([]MealPlanEntry, error)
	// Upsert creates the entry or replaces the recipe of an occupied slot.
	// Returns ErrNotFound when the recipe does not exist.
	Upsert(ctx context.Context, in MealPlanEntryUpsert) (MealPlanEntry, error)
	// Delete removes an entry or returns ErrNotFound
	Delete(ctx context.Context, id int64) error
}

// MealPlanEntry carries the recipe fields joined at read time.
type MealPlanEntry struct {
	ID             int64
	WeekStart      string // YYYY-MM-DD, a Monday
	DayOfWeek      int    // 0 = Monday
	MealSlot       string
	RecipeID       int64
	RecipeName     string
	RecipeCategory string
	RecipeFotoURL  *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type MealPlanEntryUpsert struct {
	WeekStart string
	DayOfWeek int
	MealSlot  string
	RecipeID  int64
}
