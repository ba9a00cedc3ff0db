package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fdg312/mealcraft/internal/recipes"
)

var testRecipe = recipes.Recipe{ID: 1, Name: "Test Recipe", Category: "dinner", PrepTime: 30, Portions: 4}

func TestModals_Defaults(t *testing.T) {
	var m Modals

	assert.Nil(t, m.Selected)
	assert.False(t, m.DetailOpen)
	assert.False(t, m.AddRecipeOpen)
	assert.Equal(t, DeleteConfirmation{}, m.ConfirmDeletion)
	assert.False(t, m.AnyOpen())
}

func TestModals_Detail(t *testing.T) {
	var m Modals

	m.OpenDetail(testRecipe)
	assert.True(t, m.DetailOpen)
	assert.Equal(t, testRecipe, *m.Selected)

	m.CloseDetail()
	assert.False(t, m.DetailOpen)
	assert.Nil(t, m.Selected)

	other := testRecipe
	other.ID, other.Name = 2, "Another Recipe"
	m.OpenDetail(other)
	assert.Equal(t, other, *m.Selected)
}

func TestModals_AddRecipe(t *testing.T) {
	var m Modals

	m.OpenAddRecipe()
	assert.True(t, m.AddRecipeOpen)
	m.CloseAddRecipe()
	assert.False(t, m.AddRecipeOpen)
}

func TestModals_DeleteConfirmation(t *testing.T) {
	var m Modals

	m.OpenDeleteConfirmation(testRecipe)
	assert.True(t, m.ConfirmDeletion.Open)
	assert.Equal(t, int64(1), *m.ConfirmDeletion.RecipeID)
	assert.Equal(t, "Test Recipe", m.ConfirmDeletion.RecipeName)

	long := testRecipe
	long.ID, long.Name = 0, strings.Repeat("A", 200)
	m.OpenDeleteConfirmation(long)
	assert.Equal(t, int64(0), *m.ConfirmDeletion.RecipeID)
	assert.Equal(t, strings.Repeat("A", 200), m.ConfirmDeletion.RecipeName)

	m.CloseDeleteConfirmation()
	assert.Equal(t, DeleteConfirmation{}, m.ConfirmDeletion)
}

func TestModals_Independent(t *testing.T) {
	var m Modals

	m.OpenAddRecipe()
	m.OpenDetail(testRecipe)
	m.OpenDeleteConfirmation(testRecipe)

	m.CloseAddRecipe()
	assert.True(t, m.DetailOpen)
	assert.True(t, m.ConfirmDeletion.Open)

	m.CloseDetail()
	assert.Nil(t, m.Selected)
	assert.True(t, m.ConfirmDeletion.Open)
	assert.True(t, m.AnyOpen())

	m.CloseDeleteConfirmation()
	assert.False(t, m.AnyOpen())
}
