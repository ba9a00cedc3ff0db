package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fdg312/mealcraft/internal/planner"
	"github.com/fdg312/mealcraft/internal/slots"
	"github.com/fdg312/mealcraft/internal/week"
)

const (
	addFailedMessage    = "Failed to add recipe to meal plan."
	removeFailedMessage = "Failed to remove meal plan entry."
	loadingMessage      = "Loading meal plan..."
)

type plannerView struct {
	state planner.State

	day  int // cursor column, 0 = Monday
	slot int // cursor row, index into slots.Slots

	selectorOpen   bool
	selectorCursor int

	busy   bool
	notice string
}

func (m *Model) updatePlanner(msg tea.Msg) tea.Cmd {
	v := &m.plan

	switch msg := msg.(type) {
	case entryAddedMsg:
		v.busy = false
		if msg.err != nil {
			v.notice = addFailedMessage
			return nil
		}
		v.selectorOpen = false
		v.notice = ""
		return m.syncPlanner()

	case entryRemovedMsg:
		v.busy = false
		if msg.err != nil {
			v.notice = removeFailedMessage
			return nil
		}
		v.notice = ""
		return m.syncPlanner()

	case tea.KeyMsg:
		if v.busy {
			return nil
		}
		if v.selectorOpen {
			return m.updateSelector(msg)
		}
		return m.updateGrid(msg)
	}
	return nil
}

func (m *Model) updateGrid(msg tea.KeyMsg) tea.Cmd {
	v := &m.plan

	switch msg.String() {
	case "left", "h":
		if v.day > 0 {
			v.day--
		}
	case "right", "l":
		if v.day < len(slots.Days)-1 {
			v.day++
		}
	case "up", "k":
		if v.slot > 0 {
			v.slot--
		}
	case "down", "j":
		if v.slot < len(slots.Slots)-1 {
			v.slot++
		}
	case "[", "p":
		_ = m.planner.NavigateWeek(planner.Previous)
		v.notice = ""
		return m.syncPlanner()
	case "]", "n":
		_ = m.planner.NavigateWeek(planner.Next)
		v.notice = ""
		return m.syncPlanner()
	case "r":
		m.planner.Reload()
		return m.syncPlanner()
	case "enter", "a":
		if v.state.Loading || v.state.Error != "" {
			return nil
		}
		v.selectorOpen = true
		v.selectorCursor = 0
		v.notice = ""
	case "x", "delete", "backspace":
		// entries still belong to the previous week while loading
		if v.state.Loading || v.state.Error != "" {
			return nil
		}
		entry, ok := v.state.Entry(v.day, slots.Slots[v.slot].Key)
		if !ok {
			return nil
		}
		v.busy = true
		ctrl, ctx := m.planner, m.ctx
		return func() tea.Msg {
			return entryRemovedMsg{err: ctrl.RemoveEntry(ctx, entry.ID)}
		}
	}
	return nil
}

func (m *Model) updateSelector(msg tea.KeyMsg) tea.Cmd {
	v := &m.plan
	slotKey := slots.Slots[v.slot].Key
	candidates := m.planner.CandidateRecipes(slotKey)

	switch msg.String() {
	case "esc":
		v.selectorOpen = false
		v.notice = ""
	case "up", "k":
		if v.selectorCursor > 0 {
			v.selectorCursor--
		}
	case "down", "j":
		if v.selectorCursor < len(candidates)-1 {
			v.selectorCursor++
		}
	case "enter":
		if len(candidates) == 0 {
			return nil
		}
		recipeID := candidates[v.selectorCursor].ID
		day := v.day
		v.busy = true
		ctrl, ctx := m.planner, m.ctx
		return func() tea.Msg {
			return entryAddedMsg{err: ctrl.AddEntry(ctx, day, slotKey, recipeID)}
		}
	}
	return nil
}

// syncPlanner pulls a fresh snapshot so the view does not wait for the change callback.
func (m *Model) syncPlanner() tea.Cmd {
	ctrl := m.planner
	return func() tea.Msg { return plannerStateMsg(ctrl.State()) }
}

func (m Model) plannerView() string {
	v := m.plan
	s := m.styles
	var b strings.Builder

	b.WriteString(s.WeekLabel.Render("◀ [p]  " + week.RangeLabel(v.state.WeekStart) + "  [n] ▶"))
	b.WriteString("\n")

	switch {
	case v.state.Loading:
		b.WriteString(s.Muted.Render(loadingMessage))
		b.WriteString("\n")
	case v.state.Error != "":
		b.WriteString(s.Error.Render(v.state.Error))
		b.WriteString("\n")
		b.WriteString(s.Help.Render("r retry • p/n change week • tab recipes • q quit"))
		return b.String()
	default:
		b.WriteString(m.calendarGrid())
	}

	if v.selectorOpen {
		b.WriteString(m.selectorModal())
	}
	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(s.Error.Render(v.notice))
	}

	help := "←↑↓→ move • enter add • x remove • p/n week • r reload • tab recipes • q quit"
	if v.selectorOpen {
		help = "↑↓ choose • enter add • esc close"
	}
	b.WriteString(s.Help.Render(help))
	return b.String()
}

func (m Model) calendarGrid() string {
	v := m.plan
	s := m.styles

	header := []string{s.RowLabel.Render("")}
	for day, label := range slots.Days {
		date := week.DayDate(v.state.WeekStart, day)
		header = append(header, s.DayHeader.Render(fmt.Sprintf("%s %d", label, date.Day())))
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	for si, slot := range slots.Slots {
		cells := []string{s.RowLabel.Render(slots.Emoji(slot.Category) + " " + slot.Label)}
		for day := range slots.Days {
			style := s.CellEmpty
			text := "+"
			if e, ok := v.state.Entry(day, slot.Key); ok {
				style = s.CellFilled
				text = truncate(e.RecipeName, cellWidth-2)
			}
			if day == v.day && si == v.slot {
				style = s.CellCursor
			}
			cells = append(cells, style.Render(text))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n"
}

func (m Model) selectorModal() string {
	v := m.plan
	s := m.styles
	slot := slots.Slots[v.slot]
	category := slots.CategoryFor(slot.Key)
	candidates := m.planner.CandidateRecipes(slot.Key)

	var b strings.Builder
	b.WriteString(s.Title.Render(slots.SelectorTitle(category)))
	b.WriteString("\n")
	b.WriteString(s.Muted.Render(fmt.Sprintf("%s, %s", slots.Days[v.day], slot.Label)))
	b.WriteString("\n\n")

	if len(candidates) == 0 {
		b.WriteString(s.Muted.Render(slots.EmptyMessage(category)))
	}
	for i, r := range candidates {
		line := fmt.Sprintf("%s %s", slots.Emoji(r.Category), r.Name)
		if i == v.selectorCursor {
			b.WriteString(s.Selected.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return s.Modal.Render(b.String()) + "\n"
}
