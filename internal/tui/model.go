// Package tui is the terminal front end: a top bar switching between the
// meal planner and the recipe list.
package tui

import (
	"context"
	"errors"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fdg312/mealcraft/internal/catalog"
	"github.com/fdg312/mealcraft/internal/client"
	"github.com/fdg312/mealcraft/internal/planner"
	"github.com/fdg312/mealcraft/internal/recipes"
)

type Page int

const (
	PagePlanner Page = iota
	PageRecipes
)

var pageTitles = []string{"Meal Planner", "Recipes"}

// Messages produced by commands and by the planner's change callback.
type (
	plannerStateMsg  planner.State
	catalogLoadedMsg struct{ err error }
	entryAddedMsg    struct{ err error }
	entryRemovedMsg  struct{ err error }
	recipeAddedMsg   struct {
		recipe recipes.Recipe
		err    error
	}
	recipeDeletedMsg struct {
		id  int64
		err error
	}
)

type Model struct {
	ctx     context.Context
	planner *planner.Controller
	catalog *catalog.Catalog
	styles  Styles

	page    Page
	plan    plannerView
	recipes recipesView

	width int
}

func New(ctx context.Context, ctrl *planner.Controller, cat *catalog.Catalog) Model {
	return Model{
		ctx:     ctx,
		planner: ctrl,
		catalog: cat,
		styles:  DefaultStyles(),
		plan:    plannerView{state: ctrl.State()},
		recipes: newRecipesView(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadCatalog()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case plannerStateMsg:
		// notifications may arrive out of order
		if msg.Version >= m.plan.state.Version {
			m.plan.state = planner.State(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if !m.capturesKeys() {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "tab":
				return m, m.setPage((m.page + 1) % Page(len(pageTitles)))
			case "1":
				return m, m.setPage(PagePlanner)
			case "2":
				return m, m.setPage(PageRecipes)
			}
		}
	}

	var cmd tea.Cmd
	switch msg.(type) {
	case catalogLoadedMsg, recipeAddedMsg, recipeDeletedMsg:
		cmd = m.updateRecipes(msg)
	case entryAddedMsg, entryRemovedMsg:
		cmd = m.updatePlanner(msg)
	default:
		if m.page == PagePlanner {
			cmd = m.updatePlanner(msg)
		} else {
			cmd = m.updateRecipes(msg)
		}
	}
	return m, cmd
}

// setPage switches tabs. Coming back to the planner refetches the week and
// the selector catalog, since recipes may have changed meanwhile.
func (m *Model) setPage(p Page) tea.Cmd {
	if p == m.page {
		return nil
	}
	m.page = p
	if p != PagePlanner {
		return nil
	}
	m.planner.Reload()
	m.planner.ReloadRecipes()
	return m.syncPlanner()
}

// capturesKeys is true while the active page has a modal or an input focused.
func (m Model) capturesKeys() bool {
	if m.page == PagePlanner {
		return m.plan.selectorOpen
	}
	return m.recipes.searching || m.recipes.modals.AnyOpen()
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.topBar())
	b.WriteString("\n")
	if m.page == PagePlanner {
		b.WriteString(m.plannerView())
	} else {
		b.WriteString(m.recipesView())
	}
	return b.String()
}

func (m Model) topBar() string {
	tabs := make([]string, len(pageTitles))
	for i, title := range pageTitles {
		if Page(i) == m.page {
			tabs[i] = m.styles.TabActive.Render(title)
		} else {
			tabs[i] = m.styles.TabInactive.Render(title)
		}
	}
	return m.styles.TopBar.Render("🍽️  mealcraft  " + strings.Join(tabs, " "))
}

func (m Model) loadCatalog() tea.Cmd {
	cat, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		return catalogLoadedMsg{err: cat.Load(ctx)}
	}
}

// Run builds the controller and the catalog over c and blocks until the user quits.
func Run(ctx context.Context, c *client.Client, logger *zap.Logger) error {
	return newSession(ctx, c.MealPlans, c.Recipes, logger, tea.WithAltScreen()).run()
}

// session ties a planner controller to a running program. Controller
// snapshots reach the event loop through a relay, so the controller never
// waits on the program.
type session struct {
	ctx   context.Context
	ctrl  *planner.Controller
	prog  *tea.Program
	relay *stateRelay
}

func newSession(ctx context.Context, plans planner.MealPlanService, recipeSvc catalog.RecipeService, logger *zap.Logger, opts ...tea.ProgramOption) *session {
	if logger == nil {
		logger = zap.NewNop()
	}

	relay := newStateRelay()
	ctrl := planner.New(plans, recipeSvc,
		planner.WithLogger(logger),
		planner.WithOnChange(relay.push),
	)
	cat := catalog.New(recipeSvc, logger)

	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	return &session{
		ctx:   ctx,
		ctrl:  ctrl,
		prog:  tea.NewProgram(New(ctx, ctrl, cat), opts...),
		relay: relay,
	}
}

func (s *session) run() error {
	relayCtx, stopRelay := context.WithCancel(s.ctx)
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		s.relay.run(relayCtx, s.prog.Send)
	}()
	defer func() {
		s.ctrl.Close()
		stopRelay()
		<-relayDone
	}()

	s.ctrl.Start(s.ctx)
	if _, err := s.prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// stateRelay keeps only the newest pending snapshot; push never blocks.
type stateRelay struct {
	mu      sync.Mutex
	pending *planner.State
	wake    chan struct{}
}

func newStateRelay() *stateRelay {
	return &stateRelay{wake: make(chan struct{}, 1)}
}

func (r *stateRelay) push(s planner.State) {
	r.mu.Lock()
	r.pending = &s
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *stateRelay) run(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.wake:
		}

		r.mu.Lock()
		s := r.pending
		r.pending = nil
		r.mu.Unlock()

		if s != nil {
			send(plannerStateMsg(*s))
		}
	}
}
