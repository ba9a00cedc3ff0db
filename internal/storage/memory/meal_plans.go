package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/mealcraft/internal/slots"
	"github.com/fdg312/mealcraft/internal/storage"
)

type slotKey struct {
	weekStart string
	day       int
	slot      string
}

type mealPlansStorage struct {
	mu      sync.RWMutex
	entries map[int64]storage.MealPlanEntry
	bySlot  map[slotKey]int64
	nextID  int64

	recipes *recipesStorage
}

func newMealPlansStorage(recipes *recipesStorage) *mealPlansStorage {
	return &mealPlansStorage{
		entries: make(map[int64]storage.MealPlanEntry),
		bySlot:  make(map[slotKey]int64),
		nextID:  1,
		recipes: recipes,
	}
}

func (s *mealPlansStorage) ListByWeek(ctx context.Context, weekStart string) ([]storage.MealPlanEntry, error) {
	s.mu.RLock()
	out := make([]storage.MealPlanEntry, 0, 8)
	for _, e := range s.entries {
		if e.WeekStart == weekStart {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	// join recipe fields outside the entries lock
	for i := range out {
		if err := s.joinRecipe(ctx, &out[i]); err != nil {
			return nil, err
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DayOfWeek != out[j].DayOfWeek {
			return out[i].DayOfWeek < out[j].DayOfWeek
		}
		return slots.Index(out[i].MealSlot) < slots.Index(out[j].MealSlot)
	})
	return out, nil
}

func (s *mealPlansStorage) Upsert(ctx context.Context, in storage.MealPlanEntryUpsert) (storage.MealPlanEntry, error) {
	// Lock order is s.mu then recipes.mu. A recipe deleted after this check
	// cascades through deleteByRecipe, which waits for s.mu.
	s.mu.Lock()
	if _, err := s.recipes.Get(ctx, in.RecipeID); err != nil {
		s.mu.Unlock()
		return storage.MealPlanEntry{}, err
	}
	now := time.Now().UTC()
	key := slotKey{weekStart: in.WeekStart, day: in.DayOfWeek, slot: in.MealSlot}

	var entry storage.MealPlanEntry
	if id, ok := s.bySlot[key]; ok {
		entry = s.entries[id]
		entry.RecipeID = in.RecipeID
		entry.UpdatedAt = now
	} else {
		entry = storage.MealPlanEntry{
			ID:        s.nextID,
			WeekStart: in.WeekStart,
			DayOfWeek: in.DayOfWeek,
			MealSlot:  in.MealSlot,
			RecipeID:  in.RecipeID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.nextID++
		s.bySlot[key] = entry.ID
	}
	s.entries[entry.ID] = entry
	s.mu.Unlock()

	if err := s.joinRecipe(ctx, &entry); err != nil {
		return storage.MealPlanEntry{}, err
	}
	return entry, nil
}

func (s *mealPlansStorage) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.entries, id)
	delete(s.bySlot, slotKey{weekStart: e.WeekStart, day: e.DayOfWeek, slot: e.MealSlot})
	return nil
}

func (s *mealPlansStorage) deleteByRecipe(recipeID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		if e.RecipeID == recipeID {
			delete(s.entries, id)
			delete(s.bySlot, slotKey{weekStart: e.WeekStart, day: e.DayOfWeek, slot: e.MealSlot})
		}
	}
}

func (s *mealPlansStorage) joinRecipe(ctx context.Context, e *storage.MealPlanEntry) error {
	r, err := s.recipes.Get(ctx, e.RecipeID)
	if errors.Is(err, storage.ErrNotFound) {
		// recipe deleted concurrently; deleteByRecipe will drop the entry
		return nil
	}
	if err != nil {
		return err
	}
	e.RecipeName = r.Name
	e.RecipeCategory = r.Category
	e.RecipeFotoURL = r.FotoURL
	return nil
}
