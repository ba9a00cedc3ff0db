package slots

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/fdg312/mealcraft/internal/recipes"
)

func TestCategoryFor(t *testing.T) {
	tests := map[string]string{
		"breakfast":       "breakfast",
		"morning_snack":   "snack",
		"lunch":           "lunch",
		"afternoon_snack": "snack",
		"dinner":          "dinner",
		"brunch":          "dinner",
		"":                "dinner",
	}
	for slot, want := range tests {
		assert.Equal(t, want, CategoryFor(slot), slot)
	}
}

func TestValidity(t *testing.T) {
	assert.True(t, IsValidSlot("afternoon_snack"))
	assert.False(t, IsValidSlot("snack"))
	assert.True(t, IsValidDay(0))
	assert.True(t, IsValidDay(6))
	assert.False(t, IsValidDay(7))
	assert.False(t, IsValidDay(-1))
}

func TestSlotsOrderAndLabels(t *testing.T) {
	keys := make([]string, 0, len(Slots))
	for _, s := range Slots {
		keys = append(keys, s.Key)
		assert.Equal(t, CategoryFor(s.Key), s.Category)
	}
	want := []string{"breakfast", "morning_snack", "lunch", "afternoon_snack", "dinner"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("slot order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Snack", Label("morning_snack"))
	assert.Equal(t, "mystery", Label("mystery"))
	assert.Equal(t, len(Slots), Index("mystery"))
}

func TestEmoji(t *testing.T) {
	assert.Equal(t, "🍳", Emoji("Breakfast"))
	assert.Equal(t, "🥗", Emoji("lunch"))
	assert.Equal(t, "🍽️", Emoji("DINNER"))
	assert.Equal(t, "🍿", Emoji("snack"))
	assert.Equal(t, "🍴", Emoji("dessert"))
}

func TestFilterByCategoryIgnoresCase(t *testing.T) {
	list := []recipes.Recipe{
		{ID: 1, Name: "Pancakes", Category: "Breakfast"},
		{ID: 2, Name: "Soup", Category: "lunch"},
		{ID: 3, Name: "Omelette", Category: "breakfast"},
	}
	got := FilterByCategory(list, "breakfast")
	ids := []int64{}
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]int64{1, 3}, ids); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, FilterByCategory(list, "dessert"))
	assert.Empty(t, FilterByCategory(nil, "lunch"))
}

func TestSelectorTexts(t *testing.T) {
	assert.Equal(t, "Select a snack recipe", SelectorTitle("snack"))
	assert.Equal(t, "No dinner recipes available.", EmptyMessage("dinner"))
}
