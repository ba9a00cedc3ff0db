package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fdg312/mealcraft/internal/storage"
	"github.com/fdg312/mealcraft/internal/week"
)

const entrySelect = `
	SELECT e.id, e.week_start, e.day_of_week, e.meal_slot, e.recipe_id,
	       r.name, r.category, r.foto_url, e.created_at, e.updated_at
	FROM meal_plan_entries e
	JOIN recipes r ON r.id = e.recipe_id`

// slot order for ORDER BY, matching the calendar rows
const slotOrder = `array_position(ARRAY['breakfast','morning_snack','lunch','afternoon_snack','dinner']::text[], e.meal_slot)`

type mealPlansStorage struct {
	pool *pgxpool.Pool
}

func newMealPlansStorage(pool *pgxpool.Pool) *mealPlansStorage {
	return &mealPlansStorage{pool: pool}
}

func (s *mealPlansStorage) ListByWeek(ctx context.Context, weekStart string) ([]storage.MealPlanEntry, error) {
	ws, err := week.ParseISODate(weekStart)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, entrySelect+`
		WHERE e.week_start = $1
		ORDER BY e.day_of_week, `+slotOrder, ws)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal plan entries: %w", err)
	}
	defer rows.Close()

	out := []storage.MealPlanEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal plan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating meal plan entries: %w", err)
	}
	return out, nil
}

func (s *mealPlansStorage) Upsert(ctx context.Context, in storage.MealPlanEntryUpsert) (storage.MealPlanEntry, error) {
	ws, err := week.ParseISODate(in.WeekStart)
	if err != nil {
		return storage.MealPlanEntry{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return storage.MealPlanEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// lock the recipe row so a concurrent delete cannot orphan the entry
	var exists int
	err = tx.QueryRow(ctx, `SELECT 1 FROM recipes WHERE id = $1 FOR SHARE`, in.RecipeID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.MealPlanEntry{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.MealPlanEntry{}, fmt.Errorf("failed to check recipe: %w", err)
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO meal_plan_entries (week_start, day_of_week, meal_slot, recipe_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (week_start, day_of_week, meal_slot)
		DO UPDATE SET recipe_id = EXCLUDED.recipe_id, updated_at = now()
		RETURNING id
	`, ws, in.DayOfWeek, in.MealSlot, in.RecipeID).Scan(&id)
	if err != nil {
		return storage.MealPlanEntry{}, fmt.Errorf("failed to upsert meal plan entry: %w", err)
	}

	e, err := scanEntry(tx.QueryRow(ctx, entrySelect+` WHERE e.id = $1`, id))
	if err != nil {
		return storage.MealPlanEntry{}, fmt.Errorf("failed to read meal plan entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storage.MealPlanEntry{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return e, nil
}

func (s *mealPlansStorage) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM meal_plan_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meal plan entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanEntry(row pgx.Row) (storage.MealPlanEntry, error) {
	var (
		e  storage.MealPlanEntry
		ws time.Time
	)
	err := row.Scan(
		&e.ID,
		&ws,
		&e.DayOfWeek,
		&e.MealSlot,
		&e.RecipeID,
		&e.RecipeName,
		&e.RecipeCategory,
		&e.RecipeFotoURL,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return storage.MealPlanEntry{}, err
	}
	e.WeekStart = week.ISODate(ws)
	return e, nil
}
