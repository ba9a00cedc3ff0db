package catalog

import "github.com/fdg312/mealcraft/internal/recipes"

// DeleteConfirmation is the pending delete. RecipeID is nil when closed.
type DeleteConfirmation struct {
	Open       bool
	RecipeID   *int64
	RecipeName string
}

// Modals tracks which recipe dialogs are open. The three dialogs are
// independent of each other. Not safe for concurrent use; it lives on the UI loop.
type Modals struct {
	Selected        *recipes.Recipe
	DetailOpen      bool
	AddRecipeOpen   bool
	ConfirmDeletion DeleteConfirmation
}

func (m *Modals) OpenDetail(r recipes.Recipe) {
	m.Selected = &r
	m.DetailOpen = true
}

func (m *Modals) CloseDetail() {
	m.DetailOpen = false
	m.Selected = nil
}

func (m *Modals) OpenAddRecipe() {
	m.AddRecipeOpen = true
}

func (m *Modals) CloseAddRecipe() {
	m.AddRecipeOpen = false
}

func (m *Modals) OpenDeleteConfirmation(r recipes.Recipe) {
	id := r.ID
	m.ConfirmDeletion = DeleteConfirmation{Open: true, RecipeID: &id, RecipeName: r.Name}
}

func (m *Modals) CloseDeleteConfirmation() {
	m.ConfirmDeletion = DeleteConfirmation{}
}

// AnyOpen reports whether some dialog currently has focus.
func (m *Modals) AnyOpen() bool {
	return m.DetailOpen || m.AddRecipeOpen || m.ConfirmDeletion.Open
}
