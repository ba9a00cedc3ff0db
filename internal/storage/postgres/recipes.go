package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fdg312/mealcraft/internal/storage"
)

const recipeColumns = `id, name, category, main_ingredients, common_ingredients, instructions,
	prep_time, portions, foto_url, video_url, created_at, updated_at`

type recipesStorage struct {
	pool *pgxpool.Pool
}

func newRecipesStorage(pool *pgxpool.Pool) *recipesStorage {
	return &recipesStorage{pool: pool}
}

func (s *recipesStorage) List(ctx context.Context) ([]storage.Recipe, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+recipeColumns+` FROM recipes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	out := []storage.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recipes: %w", err)
	}
	return out, nil
}

func (s *recipesStorage) Get(ctx context.Context, id int64) (storage.Recipe, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+recipeColumns+` FROM recipes WHERE id = $1`, id)
	r, err := scanRecipe(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Recipe{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Recipe{}, fmt.Errorf("failed to get recipe: %w", err)
	}
	return r, nil
}

func (s *recipesStorage) Create(ctx context.Context, r storage.Recipe) (storage.Recipe, error) {
	ingredients, err := json.Marshal(nonNilIngredients(r.MainIngredients))
	if err != nil {
		return storage.Recipe{}, fmt.Errorf("failed to encode ingredients: %w", err)
	}

	query := `
		INSERT INTO recipes (name, category, main_ingredients, common_ingredients, instructions,
		                     prep_time, portions, foto_url, video_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + recipeColumns

	row := s.pool.QueryRow(ctx, query,
		r.Name,
		r.Category,
		ingredients,
		nonNilStrings(r.CommonIngredients),
		r.Instructions,
		r.PrepTime,
		r.Portions,
		r.FotoURL,
		r.VideoURL,
	)
	created, err := scanRecipe(row)
	if err != nil {
		return storage.Recipe{}, fmt.Errorf("failed to create recipe: %w", err)
	}
	return created, nil
}

// Update uses COALESCE so nil fields keep their stored value.
func (s *recipesStorage) Update(ctx context.Context, id int64, upd storage.RecipeUpdate) (storage.Recipe, error) {
	var ingredients []byte
	if upd.MainIngredients != nil {
		b, err := json.Marshal(nonNilIngredients(*upd.MainIngredients))
		if err != nil {
			return storage.Recipe{}, fmt.Errorf("failed to encode ingredients: %w", err)
		}
		ingredients = b
	}
	var common []string
	if upd.CommonIngredients != nil {
		common = nonNilStrings(*upd.CommonIngredients)
	}

	query := `
		UPDATE recipes SET
			name               = COALESCE($2, name),
			category           = COALESCE($3, category),
			main_ingredients   = COALESCE($4::jsonb, main_ingredients),
			common_ingredients = COALESCE($5::text[], common_ingredients),
			instructions       = COALESCE($6, instructions),
			prep_time          = COALESCE($7, prep_time),
			portions           = COALESCE($8, portions),
			foto_url           = COALESCE($9, foto_url),
			video_url          = COALESCE($10, video_url),
			updated_at         = now()
		WHERE id = $1
		RETURNING ` + recipeColumns

	row := s.pool.QueryRow(ctx, query,
		id,
		upd.Name,
		upd.Category,
		ingredients,
		common,
		upd.Instructions,
		upd.PrepTime,
		upd.Portions,
		upd.FotoURL,
		upd.VideoURL,
	)
	r, err := scanRecipe(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.Recipe{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.Recipe{}, fmt.Errorf("failed to update recipe: %w", err)
	}
	return r, nil
}

// Delete relies on ON DELETE CASCADE to drop the recipe's meal plan entries.
func (s *recipesStorage) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *recipesStorage) SetPhotoURL(ctx context.Context, id int64, url string) (storage.Recipe, error) {
	return s.Update(ctx, id, storage.RecipeUpdate{FotoURL: &url})
}

func scanRecipe(row pgx.Row) (storage.Recipe, error) {
	var (
		r           storage.Recipe
		ingredients []byte
	)
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Category,
		&ingredients,
		&r.CommonIngredients,
		&r.Instructions,
		&r.PrepTime,
		&r.Portions,
		&r.FotoURL,
		&r.VideoURL,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return storage.Recipe{}, err
	}
	if len(ingredients) > 0 {
		if err := json.Unmarshal(ingredients, &r.MainIngredients); err != nil {
			return storage.Recipe{}, fmt.Errorf("failed to decode ingredients: %w", err)
		}
	}
	return r, nil
}

func nonNilIngredients(v []storage.Ingredient) []storage.Ingredient {
	if v == nil {
		return []storage.Ingredient{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
