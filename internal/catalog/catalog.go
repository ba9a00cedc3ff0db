// Package catalog keeps the client-side recipe list: load, add, delete and
// search over what the backend returned.
package catalog

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fdg312/mealcraft/internal/recipes"
)

const (
	LoadErrorMessage = "Failed to load recipes. Please try again later."

	NoMatchesMessage = "No recipes found matching your search."
	EmptyMessage     = "No recipes available yet."
)

// RecipeService is the subset of the recipe API the catalog uses.
type RecipeService interface {
	List(ctx context.Context) ([]recipes.Recipe, error)
	Create(ctx context.Context, req recipes.CreateRecipeRequest) (recipes.Recipe, error)
	Delete(ctx context.Context, id int64) error
}

type Snapshot struct {
	Recipes []recipes.Recipe
	Loading bool
	Error   string
}

type Catalog struct {
	svc    RecipeService
	logger *zap.Logger

	mu      sync.RWMutex
	list    []recipes.Recipe
	loading bool
	errMsg  string
}

// New returns a catalog in the loading state; call Load to fill it.
func New(svc RecipeService, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		svc:     svc,
		logger:  logger.Named("catalog"),
		list:    []recipes.Recipe{},
		loading: true,
	}
}

// Load fetches the whole list. On failure the list is kept and Error is set.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.errMsg = ""
	c.mu.Unlock()

	list, err := c.svc.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.errMsg = LoadErrorMessage
		c.logger.Error("load recipes failed", zap.Error(err))
		return err
	}
	if list == nil {
		list = []recipes.Recipe{}
	}
	c.list = list
	return nil
}

// Add creates the recipe and appends what the backend returned.
func (c *Catalog) Add(ctx context.Context, req recipes.CreateRecipeRequest) (recipes.Recipe, error) {
	created, err := c.svc.Create(ctx, req)
	if err != nil {
		c.logger.Error("add recipe failed", zap.String("name", req.Name), zap.Error(err))
		return recipes.Recipe{}, err
	}

	c.mu.Lock()
	c.list = append(c.list, created)
	c.mu.Unlock()
	return created, nil
}

// Delete removes the recipe on the backend, then drops it locally.
// Deleting an id that is not in the list only calls the backend.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	if err := c.svc.Delete(ctx, id); err != nil {
		c.logger.Error("delete recipe failed", zap.Int64("recipe_id", id), zap.Error(err))
		return err
	}

	c.mu.Lock()
	kept := make([]recipes.Recipe, 0, len(c.list))
	for _, r := range c.list {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	c.list = kept
	c.mu.Unlock()
	return nil
}

// Search filters by case-insensitive name substring. An empty query returns everything.
func (c *Catalog) Search(query string) []recipes.Recipe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterByName(c.list, query)
}

func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Recipes: append(make([]recipes.Recipe, 0, len(c.list)), c.list...),
		Loading: c.loading,
		Error:   c.errMsg,
	}
}

// GridMessage is the placeholder shown when the filtered list is empty.
func GridMessage(query string) string {
	if strings.TrimSpace(query) != "" {
		return NoMatchesMessage
	}
	return EmptyMessage
}

func filterByName(list []recipes.Recipe, query string) []recipes.Recipe {
	q := strings.ToLower(query)
	out := make([]recipes.Recipe, 0, len(list))
	for _, r := range list {
		if q == "" || strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	return out
}
