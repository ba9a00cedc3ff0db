package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/fdg312/mealcraft/internal/storage"
)

func seedRecipe(t *testing.T, st *MemoryStorage, name, category string) storage.Recipe {
	t.Helper()
	r, err := st.GetRecipesStorage().Create(context.Background(), storage.Recipe{
		Name:            name,
		Category:        category,
		MainIngredients: []storage.Ingredient{{Name: "egg", Unit: "pcs", Quantity: 2}},
		PrepTime:        10,
		Portions:        1,
	})
	if err != nil {
		t.Fatalf("create recipe: %v", err)
	}
	return r
}

func TestUpsertReplacesOccupiedSlot(t *testing.T) {
	ctx := context.Background()
	st := New()
	omelette := seedRecipe(t, st, "Omelette", "breakfast")
	porridge := seedRecipe(t, st, "Porridge", "breakfast")
	plans := st.GetMealPlansStorage()

	first, err := plans.Upsert(ctx, storage.MealPlanEntryUpsert{WeekStart: "2026-03-02", DayOfWeek: 0, MealSlot: "breakfast", RecipeID: omelette.ID})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, err := plans.Upsert(ctx, storage.MealPlanEntryUpsert{WeekStart: "2026-03-02", DayOfWeek: 0, MealSlot: "breakfast", RecipeID: porridge.ID})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected slot to keep id %d, got %d", first.ID, second.ID)
	}

	entries, err := plans.ListByWeek(ctx, "2026-03-02")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].RecipeName != "Porridge" || entries[0].RecipeCategory != "breakfast" {
		t.Fatalf("unexpected joined recipe: %+v", entries[0])
	}
}

func TestUpsertUnknownRecipe(t *testing.T) {
	st := New()
	_, err := st.GetMealPlansStorage().Upsert(context.Background(), storage.MealPlanEntryUpsert{
		WeekStart: "2026-03-02", DayOfWeek: 1, MealSlot: "lunch", RecipeID: 42,
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListByWeekOrdersAndScopes(t *testing.T) {
	ctx := context.Background()
	st := New()
	r := seedRecipe(t, st, "Soup", "lunch")
	plans := st.GetMealPlansStorage()

	for _, in := range []storage.MealPlanEntryUpsert{
		{WeekStart: "2026-03-02", DayOfWeek: 2, MealSlot: "dinner", RecipeID: r.ID},
		{WeekStart: "2026-03-02", DayOfWeek: 2, MealSlot: "breakfast", RecipeID: r.ID},
		{WeekStart: "2026-03-02", DayOfWeek: 0, MealSlot: "lunch", RecipeID: r.ID},
		{WeekStart: "2026-03-09", DayOfWeek: 0, MealSlot: "lunch", RecipeID: r.ID},
	} {
		if _, err := plans.Upsert(ctx, in); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	entries, err := plans.ListByWeek(ctx, "2026-03-02")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.MealSlot)
	}
	want := []string{"lunch", "breakfast", "dinner"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestDeleteRecipeCascadesToEntries(t *testing.T) {
	ctx := context.Background()
	st := New()
	r := seedRecipe(t, st, "Stew", "dinner")
	plans := st.GetMealPlansStorage()

	if _, err := plans.Upsert(ctx, storage.MealPlanEntryUpsert{WeekStart: "2026-03-02", DayOfWeek: 4, MealSlot: "dinner", RecipeID: r.ID}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := st.GetRecipesStorage().Delete(ctx, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	entries, _ := plans.ListByWeek(ctx, "2026-03-02")
	if len(entries) != 0 {
		t.Fatalf("expected entries removed with recipe, got %d", len(entries))
	}
	if err := st.GetRecipesStorage().Delete(ctx, r.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDeleteEntry(t *testing.T) {
	ctx := context.Background()
	st := New()
	r := seedRecipe(t, st, "Apple", "snack")
	plans := st.GetMealPlansStorage()

	e, err := plans.Upsert(ctx, storage.MealPlanEntryUpsert{WeekStart: "2026-03-02", DayOfWeek: 3, MealSlot: "morning_snack", RecipeID: r.ID})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := plans.Delete(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := plans.Delete(ctx, e.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// slot is free again and gets a fresh id
	again, err := plans.Upsert(ctx, storage.MealPlanEntryUpsert{WeekStart: "2026-03-02", DayOfWeek: 3, MealSlot: "morning_snack", RecipeID: r.ID})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if again.ID == e.ID {
		t.Fatalf("expected new id after delete")
	}
}

func TestRecipeUpdatePartial(t *testing.T) {
	ctx := context.Background()
	st := New()
	r := seedRecipe(t, st, "Toast", "breakfast")

	name := "French Toast"
	got, err := st.GetRecipesStorage().Update(ctx, r.ID, storage.RecipeUpdate{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "French Toast" || got.Category != "breakfast" || got.Portions != 1 {
		t.Fatalf("unexpected recipe after update: %+v", got)
	}

	if _, err := st.GetRecipesStorage().Update(ctx, 999, storage.RecipeUpdate{Name: &name}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertRacingRecipeDeleteLeavesNoOrphans(t *testing.T) {
	ctx := context.Background()
	st := New()
	plans := st.GetMealPlansStorage()

	for i := 0; i < 200; i++ {
		r := seedRecipe(t, st, fmt.Sprintf("Soup %d", i), "dinner")
		week := "2026-03-02"

		var wg sync.WaitGroup
		var upsertErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, upsertErr = plans.Upsert(ctx, storage.MealPlanEntryUpsert{WeekStart: week, DayOfWeek: i % 7, MealSlot: "dinner", RecipeID: r.ID})
		}()
		go func() {
			defer wg.Done()
			if err := st.GetRecipesStorage().Delete(ctx, r.ID); err != nil {
				t.Errorf("delete recipe: %v", err)
			}
		}()
		wg.Wait()

		if upsertErr != nil && !errors.Is(upsertErr, storage.ErrNotFound) {
			t.Fatalf("upsert: %v", upsertErr)
		}
		entries, err := plans.ListByWeek(ctx, week)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		for _, e := range entries {
			if e.RecipeID == r.ID {
				t.Fatalf("iteration %d: entry %d still points at deleted recipe %d", i, e.ID, r.ID)
			}
		}
	}
}
