// Package slots is the calendar addressing scheme of the weekly planner:
// seven days by five meal slots, each slot bound to a recipe category.
package slots

import (
	"fmt"
	"strings"

	"github.com/fdg312/mealcraft/internal/recipes"
)

const (
	Breakfast      = "breakfast"
	MorningSnack   = "morning_snack"
	Lunch          = "lunch"
	AfternoonSnack = "afternoon_snack"
	Dinner         = "dinner"
)

const (
	CategoryBreakfast = "breakfast"
	CategoryLunch     = "lunch"
	CategoryDinner    = "dinner"
	CategorySnack     = "snack"
)

// Days are the column labels, index 0 is Monday.
var Days = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Slot is one row of the calendar grid.
type Slot struct {
	Key      string
	Label    string
	Category string
}

// Slots in display order.
var Slots = []Slot{
	{Key: Breakfast, Label: "Breakfast", Category: CategoryBreakfast},
	{Key: MorningSnack, Label: "Snack", Category: CategorySnack},
	{Key: Lunch, Label: "Lunch", Category: CategoryLunch},
	{Key: AfternoonSnack, Label: "Snack", Category: CategorySnack},
	{Key: Dinner, Label: "Dinner", Category: CategoryDinner},
}

var categoryBySlot = map[string]string{
	Breakfast:      CategoryBreakfast,
	MorningSnack:   CategorySnack,
	Lunch:          CategoryLunch,
	AfternoonSnack: CategorySnack,
	Dinner:         CategoryDinner,
}

var emojiByCategory = map[string]string{
	CategoryBreakfast: "🍳",
	CategoryLunch:     "🥗",
	CategoryDinner:    "🍽️",
	CategorySnack:     "🍿",
}

// CategoryFor maps a slot key to the recipe category it accepts.
// Unknown keys fall back to dinner.
func CategoryFor(slotKey string) string {
	if c, ok := categoryBySlot[slotKey]; ok {
		return c
	}
	return CategoryDinner
}

func IsValidSlot(key string) bool {
	_, ok := categoryBySlot[key]
	return ok
}

func IsValidDay(day int) bool {
	return day >= 0 && day < len(Days)
}

// Index returns the display position of a slot key, or len(Slots) when unknown.
func Index(key string) int {
	for i, s := range Slots {
		if s.Key == key {
			return i
		}
	}
	return len(Slots)
}

// Label returns the row label for a slot key, or the key itself.
func Label(key string) string {
	if i := Index(key); i < len(Slots) {
		return Slots[i].Label
	}
	return key
}

// Emoji returns the placeholder glyph for a recipe category.
func Emoji(category string) string {
	if e, ok := emojiByCategory[strings.ToLower(category)]; ok {
		return e
	}
	return "🍴"
}

// FilterByCategory keeps recipes whose category matches, ignoring case.
func FilterByCategory(list []recipes.Recipe, category string) []recipes.Recipe {
	out := make([]recipes.Recipe, 0, len(list))
	for _, r := range list {
		if strings.EqualFold(r.Category, category) {
			out = append(out, r)
		}
	}
	return out
}

func SelectorTitle(category string) string {
	return fmt.Sprintf("Select a %s recipe", category)
}

func EmptyMessage(category string) string {
	return fmt.Sprintf("No %s recipes available.", category)
}
