package memory

import (
	"github.com/fdg312/mealcraft/internal/storage"
)

// MemoryStorage хранит всё в памяти процесса
type MemoryStorage struct {
	recipes   *recipesStorage
	mealPlans *mealPlansStorage
}

// New создаёт пустой MemoryStorage
func New() *MemoryStorage {
	recipes := newRecipesStorage()
	mealPlans := newMealPlansStorage(recipes)
	recipes.onDelete = mealPlans.deleteByRecipe

	return &MemoryStorage{
		recipes:   recipes,
		mealPlans: mealPlans,
	}
}

func (m *MemoryStorage) GetRecipesStorage() storage.RecipesStorage {
	return m.recipes
}

func (m *MemoryStorage) GetMealPlansStorage() storage.MealPlansStorage {
	return m.mealPlans
}

func (m *MemoryStorage) Close() error {
	return nil
}
