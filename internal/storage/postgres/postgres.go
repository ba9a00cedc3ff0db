package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fdg312/mealcraft/internal/storage"
)

// PostgresStorage реализует storage.Storage поверх pgxpool
type PostgresStorage struct {
	pool      *pgxpool.Pool
	recipes   *recipesStorage
	mealPlans *mealPlansStorage
}

// New opens a pool and checks connectivity. The schema comes from goose migrations.
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStorage{
		pool:      pool,
		recipes:   newRecipesStorage(pool),
		mealPlans: newMealPlansStorage(pool),
	}, nil
}

func (p *PostgresStorage) GetRecipesStorage() storage.RecipesStorage {
	return p.recipes
}

func (p *PostgresStorage) GetMealPlansStorage() storage.MealPlansStorage {
	return p.mealPlans
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}
