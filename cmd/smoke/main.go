package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/mealcraft/internal/client"
	"github.com/fdg312/mealcraft/internal/config"
	"github.com/fdg312/mealcraft/internal/mealplans"
	"github.com/fdg312/mealcraft/internal/recipes"
	"github.com/fdg312/mealcraft/internal/slots"
	"github.com/fdg312/mealcraft/internal/week"
)

var (
	apiBase   string
	api       *client.Client
	weekStart string
	recipeID  int64
	entryID   int64
)

func main() {
	fmt.Println("=== Mealcraft E2E Smoke Test ===")
	fmt.Println()

	apiBase = strings.TrimRight(getEnv("API_BASE_URL", config.DefaultAPIBaseURL), "/")
	api = client.New(client.Config{BaseURL: apiBase, Timeout: 30 * time.Second}, nil, nil)

	// far enough ahead to avoid touching a real week
	weekStart = week.ISODate(week.StartOfWeek(time.Now()).AddDate(0, 0, 7*52))

	fmt.Printf("API Base: %s\n", apiBase)
	fmt.Printf("Week: %s\n", weekStart)
	fmt.Println()

	steps := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"Healthz", testHealthz},
		{"Create Recipe", testCreateRecipe},
		{"Add Meal Plan Entry", testAddEntry},
		{"List Week", testListWeek},
		{"Export Week (CSV)", testExportCSV},
		{"Export Week (PDF)", testExportPDF},
		{"Delete Entry", testDeleteEntry},
		{"Delete Recipe", testDeleteRecipe},
	}

	ctx := context.Background()
	failed := false
	for i, step := range steps {
		fmt.Printf("[%d/%d] %s... ", i+1, len(steps), step.name)
		if err := step.fn(ctx); err != nil {
			fmt.Printf("❌ FAILED\n")
			fmt.Printf("  Error: %v\n\n", err)
			failed = true
			break
		}
		fmt.Printf("✅ OK\n")
	}

	if failed {
		cleanup(ctx)
		fmt.Println()
		fmt.Println("❌ SMOKE TEST FAILED")
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("✅ ALL SMOKE TESTS PASSED")
}

func testHealthz(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"/healthz", nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}

func testCreateRecipe(ctx context.Context) error {
	r, err := api.Recipes.Create(ctx, recipes.CreateRecipeRequest{
		Name:              fmt.Sprintf("Smoke Oatmeal %d", time.Now().Unix()),
		Category:          "Breakfast",
		MainIngredients:   []recipes.Ingredient{{Name: "oats", Unit: "g", Quantity: 80}},
		CommonIngredients: []string{"salt"},
		Instructions:      "Boil, stir, serve.",
		PrepTime:          10,
		Portions:          1,
	})
	if err != nil {
		return err
	}
	if r.ID <= 0 {
		return fmt.Errorf("unexpected recipe id %d", r.ID)
	}
	recipeID = r.ID
	return nil
}

func testAddEntry(ctx context.Context) error {
	e, err := api.MealPlans.Create(ctx, mealplans.CreateEntryRequest{
		WeekStart: weekStart,
		DayOfWeek: 2,
		MealSlot:  slots.Breakfast,
		RecipeID:  recipeID,
	})
	if err != nil {
		return err
	}
	if e.RecipeID != recipeID {
		return fmt.Errorf("entry points at recipe %d, want %d", e.RecipeID, recipeID)
	}
	entryID = e.ID
	return nil
}

func testListWeek(ctx context.Context) error {
	entries, err := api.MealPlans.List(ctx, weekStart)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ID == entryID {
			if e.DayOfWeek != 2 || e.MealSlot != slots.Breakfast {
				return fmt.Errorf("entry %d at day=%d slot=%s", e.ID, e.DayOfWeek, e.MealSlot)
			}
			return nil
		}
	}
	return fmt.Errorf("entry %d not found among %d entries", entryID, len(entries))
}

func testExportCSV(ctx context.Context) error {
	data, err := api.MealPlans.Export(ctx, weekStart, "csv")
	if err != nil {
		return err
	}
	if !bytes.HasPrefix(data, []byte("date,day,meal_slot")) {
		return fmt.Errorf("unexpected csv header: %.60q", data)
	}
	if !bytes.Contains(data, []byte("Smoke Oatmeal")) {
		return fmt.Errorf("csv does not mention the recipe")
	}
	return nil
}

func testExportPDF(ctx context.Context) error {
	data, err := api.MealPlans.Export(ctx, weekStart, "pdf")
	if err != nil {
		return err
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return fmt.Errorf("response is not a PDF (%d bytes)", len(data))
	}
	return nil
}

func testDeleteEntry(ctx context.Context) error {
	if err := api.MealPlans.Delete(ctx, entryID); err != nil {
		return err
	}
	entryID = 0
	return nil
}

func testDeleteRecipe(ctx context.Context) error {
	id := recipeID
	if err := api.Recipes.Delete(ctx, id); err != nil {
		return err
	}
	recipeID = 0
	if _, err := api.Recipes.Get(ctx, id); !client.IsNotFound(err) {
		return fmt.Errorf("recipe %d still readable after delete (err=%v)", id, err)
	}
	return nil
}

// cleanup removes whatever the failed run left behind.
func cleanup(ctx context.Context) {
	if entryID > 0 {
		if err := api.MealPlans.Delete(ctx, entryID); err != nil && !client.IsNotFound(err) {
			fmt.Printf("  cleanup: entry %d: %v\n", entryID, err)
		}
	}
	if recipeID > 0 {
		if err := api.Recipes.Delete(ctx, recipeID); err != nil && !client.IsNotFound(err) {
			fmt.Printf("  cleanup: recipe %d: %v\n", recipeID, err)
		}
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
