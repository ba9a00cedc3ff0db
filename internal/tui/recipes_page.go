package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fdg312/mealcraft/internal/catalog"
	"github.com/fdg312/mealcraft/internal/recipes"
	"github.com/fdg312/mealcraft/internal/slots"
)

const (
	recipeAddFailedMessage    = "Failed to add recipe."
	recipeDeleteFailedMessage = "Failed to delete recipe."
)

// add form fields, in tab order
const (
	fieldName = iota
	fieldCategory
	fieldPrepTime
	fieldPortions
	fieldIngredients
	fieldCommon
	fieldInstructions
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Name",
	"Category",
	"Prep time (min)",
	"Portions",
	"Ingredients (name:qty:unit; ...)",
	"Common ingredients (a, b, ...)",
	"Instructions",
}

type recipesView struct {
	search    textinput.Model
	searching bool
	cursor    int

	modals catalog.Modals
	form   addForm

	busy   bool
	notice string
}

type addForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newRecipesView() recipesView {
	search := textinput.New()
	search.Placeholder = "Search recipes..."
	search.Prompt = "🔍 "
	search.CharLimit = 100
	search.Width = 40
	search.Cursor.SetMode(cursor.CursorStatic)
	return recipesView{search: search}
}

func newAddForm() addForm {
	var f addForm
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 500
		in.Width = 50
		in.Cursor.SetMode(cursor.CursorStatic)
		f.inputs[i] = in
	}
	f.inputs[fieldCategory].Placeholder = "breakfast, lunch, dinner or snack"
	f.inputs[fieldIngredients].Placeholder = "flour:200:g; milk:300:ml"
	f.inputs[fieldName].Focus()
	return f
}

func (m *Model) updateRecipes(msg tea.Msg) tea.Cmd {
	v := &m.recipes

	switch msg := msg.(type) {
	case catalogLoadedMsg:
		v.clampCursor(len(m.filtered()))
		return nil

	case recipeAddedMsg:
		v.busy = false
		if msg.err != nil {
			v.form.err = recipeAddFailedMessage
			return nil
		}
		v.modals.CloseAddRecipe()
		return nil

	case recipeDeletedMsg:
		v.busy = false
		if msg.err != nil {
			v.notice = recipeDeleteFailedMessage
			return nil
		}
		v.notice = ""
		v.modals.CloseDeleteConfirmation()
		if v.modals.Selected != nil && v.modals.Selected.ID == msg.id {
			v.modals.CloseDetail()
		}
		v.clampCursor(len(m.filtered()))
		return nil

	case tea.KeyMsg:
		if v.busy {
			return nil
		}
		switch {
		case v.modals.ConfirmDeletion.Open:
			return m.updateDeleteConfirmation(msg)
		case v.modals.AddRecipeOpen:
			return m.updateAddForm(msg)
		case v.modals.DetailOpen:
			return m.updateDetail(msg)
		case v.searching:
			return m.updateSearch(msg)
		}
		return m.updateList(msg)

	default:
		// blink and other input-internal messages
		var cmd tea.Cmd
		switch {
		case v.modals.AddRecipeOpen:
			v.form.inputs[v.form.focus], cmd = v.form.inputs[v.form.focus].Update(msg)
		case v.searching:
			v.search, cmd = v.search.Update(msg)
		}
		return cmd
	}
}

func (m *Model) updateList(msg tea.KeyMsg) tea.Cmd {
	v := &m.recipes
	list := m.filtered()

	switch msg.String() {
	case "/":
		v.searching = true
		return v.search.Focus()
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(list)-1 {
			v.cursor++
		}
	case "enter":
		if len(list) > 0 {
			v.modals.OpenDetail(list[v.cursor])
		}
	case "a":
		v.form = newAddForm()
		v.modals.OpenAddRecipe()
	case "d", "x":
		if len(list) > 0 {
			v.notice = ""
			v.modals.OpenDeleteConfirmation(list[v.cursor])
		}
	case "r":
		return m.loadCatalog()
	}
	return nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	v := &m.recipes

	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		v.searching = false
		v.search.Blur()
		return nil
	}

	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	v.cursor = 0
	return cmd
}

func (m *Model) updateDetail(msg tea.KeyMsg) tea.Cmd {
	v := &m.recipes

	switch msg.String() {
	case "esc", "enter", "q":
		v.modals.CloseDetail()
	case "d", "x":
		if v.modals.Selected != nil {
			v.notice = ""
			v.modals.OpenDeleteConfirmation(*v.modals.Selected)
		}
	}
	return nil
}

func (m *Model) updateDeleteConfirmation(msg tea.KeyMsg) tea.Cmd {
	v := &m.recipes

	switch msg.String() {
	case "y", "enter":
		if v.modals.ConfirmDeletion.RecipeID == nil {
			return nil
		}
		id := *v.modals.ConfirmDeletion.RecipeID
		v.busy = true
		cat, ctx := m.catalog, m.ctx
		return func() tea.Msg {
			return recipeDeletedMsg{id: id, err: cat.Delete(ctx, id)}
		}
	case "n", "esc":
		v.notice = ""
		v.modals.CloseDeleteConfirmation()
	}
	return nil
}

func (m *Model) updateAddForm(msg tea.KeyMsg) tea.Cmd {
	v := &m.recipes
	f := &v.form

	switch msg.Type {
	case tea.KeyEsc:
		v.modals.CloseAddRecipe()
		return nil
	case tea.KeyTab, tea.KeyDown:
		return f.move(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return f.move(-1)
	case tea.KeyCtrlS:
		return m.submitAddForm()
	case tea.KeyEnter:
		if f.focus == fieldCount-1 {
			return m.submitAddForm()
		}
		return f.move(1)
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (m *Model) submitAddForm() tea.Cmd {
	v := &m.recipes
	req, err := v.form.request()
	if err != nil {
		v.form.err = err.Error()
		return nil
	}
	v.form.err = ""
	v.busy = true
	cat, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		r, err := cat.Add(ctx, req)
		return recipeAddedMsg{recipe: r, err: err}
	}
}

func (f *addForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	return f.inputs[f.focus].Focus()
}

// request builds and validates a create request from the form values.
func (f *addForm) request() (recipes.CreateRecipeRequest, error) {
	val := func(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

	req := recipes.CreateRecipeRequest{
		Name:         val(fieldName),
		Category:     val(fieldCategory),
		Instructions: val(fieldInstructions),
	}

	var err error
	if req.PrepTime, err = atoiOrZero(val(fieldPrepTime)); err != nil {
		return req, fmt.Errorf("prep time must be a number")
	}
	if req.Portions, err = atoiOrZero(val(fieldPortions)); err != nil {
		return req, fmt.Errorf("portions must be a number")
	}
	if req.MainIngredients, err = parseIngredients(val(fieldIngredients)); err != nil {
		return req, err
	}
	req.CommonIngredients = splitList(val(fieldCommon))

	req.Normalize()
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

// parseIngredients reads "name:qty:unit; name:qty:unit". The unit may be omitted.
func parseIngredients(s string) ([]recipes.Ingredient, error) {
	var out []recipes.Ingredient
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("ingredient %q: expected name:qty:unit", item)
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("ingredient %q: quantity must be a number", item)
		}
		ing := recipes.Ingredient{Name: strings.TrimSpace(parts[0]), Quantity: qty}
		if len(parts) == 3 {
			ing.Unit = strings.TrimSpace(parts[2])
		}
		out = append(out, ing)
	}
	return out, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiOrZero(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func (v *recipesView) clampCursor(n int) {
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (m Model) filtered() []recipes.Recipe {
	return m.catalog.Search(m.recipes.search.Value())
}

func (m Model) recipesView() string {
	v := m.recipes
	s := m.styles
	snap := m.catalog.Snapshot()

	var b strings.Builder
	b.WriteString(v.search.View())
	b.WriteString("\n\n")

	switch {
	case snap.Loading:
		b.WriteString(s.Muted.Render("Loading recipes..."))
		b.WriteString("\n")
	case snap.Error != "":
		b.WriteString(s.Error.Render(snap.Error))
		b.WriteString("\n")
	default:
		list := m.filtered()
		if len(list) == 0 {
			b.WriteString(s.Muted.Render(catalog.GridMessage(v.search.Value())))
			b.WriteString("\n")
		}
		for i, r := range list {
			line := fmt.Sprintf("%s %-30s %-10s %3d min  %d portions",
				slots.Emoji(r.Category), truncate(r.Name, 30), strings.ToLower(r.Category), r.PrepTime, r.Portions)
			if i == v.cursor {
				b.WriteString(s.Selected.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
	}

	switch {
	case v.modals.ConfirmDeletion.Open:
		b.WriteString(m.deleteModal())
	case v.modals.AddRecipeOpen:
		b.WriteString(m.addModal())
	case v.modals.DetailOpen:
		b.WriteString(m.detailModal())
	}

	b.WriteString(s.Help.Render("/ search • enter details • a add • d delete • r reload • tab planner • q quit"))
	return b.String()
}

func (m Model) detailModal() string {
	r := m.recipes.modals.Selected
	if r == nil {
		return ""
	}
	s := m.styles

	var b strings.Builder
	b.WriteString(s.Title.Render(slots.Emoji(r.Category) + " " + r.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Category: %s\nPrep time: %d min\nPortions: %d\n\n", r.Category, r.PrepTime, r.Portions)

	b.WriteString("Main ingredients:\n")
	for _, ing := range r.MainIngredients {
		fmt.Fprintf(&b, "  • %s %s %s\n", strconv.FormatFloat(ing.Quantity, 'f', -1, 64), ing.Unit, ing.Name)
	}
	if len(r.CommonIngredients) > 0 {
		fmt.Fprintf(&b, "Common: %s\n", strings.Join(r.CommonIngredients, ", "))
	}
	if r.Instructions != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Instructions)
	}
	if r.FotoURL != nil {
		fmt.Fprintf(&b, "\nPhoto: %s\n", *r.FotoURL)
	}
	if r.VideoURL != nil {
		fmt.Fprintf(&b, "Video: %s\n", *r.VideoURL)
	}
	b.WriteString(s.Muted.Render("\nesc close • d delete"))
	return s.Modal.Render(b.String()) + "\n"
}

func (m Model) addModal() string {
	f := m.recipes.form
	s := m.styles

	var b strings.Builder
	b.WriteString(s.Title.Render("Add recipe"))
	b.WriteString("\n")
	for i, in := range f.inputs {
		label := fieldLabels[i]
		if i == f.focus {
			label = s.Selected.Render(label)
		}
		fmt.Fprintf(&b, "%s\n%s\n", label, in.View())
	}
	if f.err != "" {
		b.WriteString(s.Error.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(s.Muted.Render("tab next field • ctrl+s save • esc cancel"))
	return s.Modal.Render(b.String()) + "\n"
}

func (m Model) deleteModal() string {
	v := m.recipes
	s := m.styles

	body := fmt.Sprintf("Delete %q?\n\n", v.modals.ConfirmDeletion.RecipeName)
	if v.notice != "" {
		body += s.Error.Render(v.notice) + "\n"
	}
	body += s.Muted.Render("y confirm • n cancel")
	return s.Modal.Render(body) + "\n"
}
