package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fdg312/mealcraft/internal/client"
	"github.com/fdg312/mealcraft/internal/config"
	"github.com/fdg312/mealcraft/internal/httpserver"
	"github.com/fdg312/mealcraft/internal/storage"
	"github.com/fdg312/mealcraft/internal/storage/memory"
)

func toStorageRecipe(name, category string) storage.Recipe {
	return storage.Recipe{
		Name:            name,
		Category:        category,
		MainIngredients: []storage.Ingredient{{Name: "base", Unit: "g", Quantity: 100}},
		PrepTime:        20,
		Portions:        2,
	}
}

func newBackend(t *testing.T) string {
	t.Helper()
	st := memory.New()
	_, err := st.GetRecipesStorage().Create(context.Background(), toStorageRecipe("Pancakes", "Breakfast"))
	require.NoError(t, err)
	_, err = st.GetRecipesStorage().Create(context.Background(), toStorageRecipe("Lentil Soup", "Dinner"))
	require.NoError(t, err)

	srv := httpserver.NewWithStorage(&config.Config{}, st, zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts.URL
}

func execute(t *testing.T, api string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api", api, "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecipesCommand(t *testing.T) {
	api := newBackend(t)

	out, err := execute(t, api, "recipes")
	require.NoError(t, err)
	assert.Contains(t, out, "Pancakes")
	assert.Contains(t, out, "Lentil Soup")

	out, err = execute(t, api, "recipes", "--category", "dinner")
	require.NoError(t, err)
	assert.NotContains(t, out, "Pancakes")
	assert.Contains(t, out, "Lentil Soup")

	out, err = execute(t, api, "recipes", "--search", "xyz")
	require.NoError(t, err)
	assert.Contains(t, out, "No recipes found matching your search.")
}

func TestAddWeekRemove(t *testing.T) {
	api := newBackend(t)

	out, err := execute(t, api, "add", "tue", "breakfast", "1", "--offset", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Tue Breakfast")
	assert.Contains(t, out, "Pancakes [entry 1]")

	out, err = execute(t, api, "week", "--offset", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Pancakes #1")

	out, err = execute(t, api, "week")
	require.NoError(t, err)
	assert.NotContains(t, out, "Pancakes")

	out, err = execute(t, api, "remove", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Meal plan entry 1 removed")

	_, err = execute(t, api, "remove", "1")
	assert.ErrorContains(t, err, "HTTP error! status: 404")
}

func TestAddCommand_Validation(t *testing.T) {
	api := newBackend(t)

	_, err := execute(t, api, "add", "funday", "breakfast", "1")
	assert.ErrorContains(t, err, "unknown day")

	_, err = execute(t, api, "add", "0", "brunch", "1")
	assert.ErrorContains(t, err, "unknown slot")

	_, err = execute(t, api, "add", "0", "lunch", "abc")
	assert.ErrorContains(t, err, "RECIPE_ID must be a positive integer")

	_, err = execute(t, api, "add", "0", "lunch", "99")
	assert.ErrorContains(t, err, "HTTP error! status: 404")
}

func TestExportCommand_Stdout(t *testing.T) {
	api := newBackend(t)

	out, err := execute(t, api, "export", "--format", "csv", "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "date,day,meal_slot,recipe_name,recipe_category")

	_, err = execute(t, api, "export", "--format", "docx")
	assert.Error(t, err)
}

func TestWeekCommand_UnreachableAPI(t *testing.T) {
	ts := httptest.NewServer(nil)
	api := ts.URL
	ts.Close()

	_, err := execute(t, api, "week")
	assert.ErrorContains(t, err, "Failed to load meal plan. Please try again later.")
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"6", 6, false},
		{"7", 0, true},
		{"mon", 0, false},
		{"Tuesday", 1, false},
		{"SUN", 6, false},
		{"su", 0, true},
		{"funday", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStartPlannerOffset(t *testing.T) {
	api := newBackend(t)
	cfg := &config.Config{APIBaseURL: api, APITimeoutSeconds: 5}
	a := &app{
		cfg:    cfg,
		logger: zap.NewNop(),
		client: client.New(client.ConfigFrom(cfg), nil, nil),
		now:    func() time.Time { return time.Date(2026, time.March, 4, 12, 0, 0, 0, time.Local) },
	}

	ctrl, err := a.startPlanner(context.Background(), -2)
	require.NoError(t, err)
	defer ctrl.Close()

	assert.Equal(t, "2026-02-16", ctrl.State().WeekStartISO())
}
