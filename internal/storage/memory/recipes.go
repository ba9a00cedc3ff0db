package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/mealcraft/internal/storage"
)

type recipesStorage struct {
	mu      sync.RWMutex
	recipes map[int64]storage.Recipe
	nextID  int64

	// called after a recipe is removed, outside the lock
	onDelete func(recipeID int64)
}

func newRecipesStorage() *recipesStorage {
	return &recipesStorage{
		recipes: make(map[int64]storage.Recipe),
		nextID:  1,
	}
}

func (s *recipesStorage) List(ctx context.Context) ([]storage.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]storage.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, cloneRecipe(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *recipesStorage) Get(ctx context.Context, id int64) (storage.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[id]
	if !ok {
		return storage.Recipe{}, storage.ErrNotFound
	}
	return cloneRecipe(r), nil
}

func (s *recipesStorage) Create(ctx context.Context, recipe storage.Recipe) (storage.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	recipe.ID = s.nextID
	s.nextID++
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	s.recipes[recipe.ID] = cloneRecipe(recipe)
	return recipe, nil
}

func (s *recipesStorage) Update(ctx context.Context, id int64, upd storage.RecipeUpdate) (storage.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recipes[id]
	if !ok {
		return storage.Recipe{}, storage.ErrNotFound
	}

	if upd.Name != nil {
		r.Name = *upd.Name
	}
	if upd.Category != nil {
		r.Category = *upd.Category
	}
	if upd.MainIngredients != nil {
		r.MainIngredients = *upd.MainIngredients
	}
	if upd.CommonIngredients != nil {
		r.CommonIngredients = *upd.CommonIngredients
	}
	if upd.Instructions != nil {
		r.Instructions = *upd.Instructions
	}
	if upd.PrepTime != nil {
		r.PrepTime = *upd.PrepTime
	}
	if upd.Portions != nil {
		r.Portions = *upd.Portions
	}
	if upd.FotoURL != nil {
		r.FotoURL = upd.FotoURL
	}
	if upd.VideoURL != nil {
		r.VideoURL = upd.VideoURL
	}
	r.UpdatedAt = time.Now().UTC()

	s.recipes[id] = cloneRecipe(r)
	return cloneRecipe(r), nil
}

func (s *recipesStorage) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	if _, ok := s.recipes[id]; !ok {
		s.mu.Unlock()
		return storage.ErrNotFound
	}
	delete(s.recipes, id)
	s.mu.Unlock()

	if s.onDelete != nil {
		s.onDelete(id)
	}
	return nil
}

func (s *recipesStorage) SetPhotoURL(ctx context.Context, id int64, url string) (storage.Recipe, error) {
	return s.Update(ctx, id, storage.RecipeUpdate{FotoURL: &url})
}

func cloneRecipe(r storage.Recipe) storage.Recipe {
	if r.MainIngredients != nil {
		r.MainIngredients = append([]storage.Ingredient(nil), r.MainIngredients...)
	}
	if r.CommonIngredients != nil {
		r.CommonIngredients = append([]string(nil), r.CommonIngredients...)
	}
	if r.FotoURL != nil {
		v := *r.FotoURL
		r.FotoURL = &v
	}
	if r.VideoURL != nil {
		v := *r.VideoURL
		r.VideoURL = &v
	}
	return r
}
