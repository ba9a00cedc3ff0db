package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/fdg312/mealcraft/internal/recipes"
)

// Recipes talks to /recipes.
type Recipes struct {
	t *transport
}

// List returns the whole catalog; the backend wraps it in {status,count,recipes}.
func (s *Recipes) List(ctx context.Context) ([]recipes.Recipe, error) {
	var resp recipes.ListResponse
	if err := s.t.do(ctx, http.MethodGet, "/recipes", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Recipes == nil {
		return []recipes.Recipe{}, nil
	}
	return resp.Recipes, nil
}

func (s *Recipes) Get(ctx context.Context, id int64) (recipes.Recipe, error) {
	var resp recipes.RecipeResponse
	if err := s.t.do(ctx, http.MethodGet, recipePath(id), nil, nil, &resp); err != nil {
		return recipes.Recipe{}, err
	}
	return resp.Recipe, nil
}

func (s *Recipes) Create(ctx context.Context, req recipes.CreateRecipeRequest) (recipes.Recipe, error) {
	var resp recipes.RecipeResponse
	if err := s.t.do(ctx, http.MethodPost, "/recipes", nil, req, &resp); err != nil {
		return recipes.Recipe{}, err
	}
	return resp.Recipe, nil
}

func (s *Recipes) Delete(ctx context.Context, id int64) error {
	return s.t.do(ctx, http.MethodDelete, recipePath(id), nil, nil, nil)
}

func recipePath(id int64) string {
	return "/recipes/" + strconv.FormatInt(id, 10)
}
