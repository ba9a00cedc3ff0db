// Package planner holds the meal planner state: the viewed week, its
// calendar entries and the recipe catalog used by the slot selector.
// Views read snapshots and drive it through methods; network calls run
// off the caller's goroutine unless stated otherwise.
package planner

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fdg312/mealcraft/internal/mealplans"
	"github.com/fdg312/mealcraft/internal/recipes"
	"github.com/fdg312/mealcraft/internal/slots"
	"github.com/fdg312/mealcraft/internal/week"
)

// LoadErrorMessage is shown instead of the calendar when the week fails to load.
const LoadErrorMessage = "Failed to load meal plan. Please try again later."

var ErrInvalidDirection = errors.New("direction must be -1 (previous) or 1 (next)")

type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

// MealPlanService is the subset of the meal plan API the controller uses.
type MealPlanService interface {
	List(ctx context.Context, weekStart string) ([]mealplans.Entry, error)
	Create(ctx context.Context, req mealplans.CreateEntryRequest) (mealplans.Entry, error)
	Delete(ctx context.Context, id int64) error
}

type RecipeService interface {
	List(ctx context.Context) ([]recipes.Recipe, error)
}

// State is a snapshot. Slices are copies and safe to keep.
type State struct {
	WeekStart time.Time
	Entries   []mealplans.Entry
	Recipes   []recipes.Recipe
	Loading   bool
	Error     string
	// Version grows with every change; a view can drop snapshots older than
	// the one it already shows.
	Version uint64
}

// WeekStartISO is WeekStart as YYYY-MM-DD.
func (s State) WeekStartISO() string {
	return week.ISODate(s.WeekStart)
}

// Entry finds the entry in (day, slot) of this snapshot.
func (s State) Entry(day int, slot string) (mealplans.Entry, bool) {
	return findEntry(s.Entries, day, slot)
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides time.Now, used to pick the initial week.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithOnChange registers a callback receiving a snapshot after every state change.
// It is called without the controller lock held and may be called from any goroutine.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

type Controller struct {
	mealPlans MealPlanService
	recipes   RecipeService
	logger    *zap.Logger
	now       func() time.Time
	onChange  func(State)

	mu        sync.Mutex
	weekStart time.Time
	entries   []mealplans.Entry
	catalog   []recipes.Recipe
	loading   bool
	errMsg    string
	version   uint64

	gen         uint64 // generation of the current entries fetch
	recipesGen  uint64 // generation of the current catalog fetch
	cancelFetch context.CancelFunc
	baseCtx     context.Context
	cancelBase  context.CancelFunc
	closed      bool

	wg sync.WaitGroup
}

func New(mealPlans MealPlanService, recipeSvc RecipeService, opts ...Option) *Controller {
	c := &Controller{
		mealPlans: mealPlans,
		recipes:   recipeSvc,
		logger:    zap.NewNop(),
		now:       time.Now,
		entries:   []mealplans.Entry{},
		catalog:   []recipes.Recipe{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("planner")
	c.weekStart = week.StartOfWeek(c.now())
	c.baseCtx, c.cancelBase = context.WithCancel(context.Background())
	return c
}

// Start resets the view to the current week and loads its entries and the
// recipe catalog concurrently. It returns at once; use Wait to block.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.cancelBase()
	c.baseCtx, c.cancelBase = context.WithCancel(ctx)
	base := c.baseCtx
	c.weekStart = week.StartOfWeek(c.now())
	fetchCtx, gen, weekISO := c.beginFetchLocked(base)
	c.recipesGen++
	recipesGen := c.recipesGen
	c.wg.Add(1)
	c.mu.Unlock()
	c.notify()

	go func() {
		defer c.wg.Done()

		var g errgroup.Group
		g.Go(func() error {
			c.runFetch(fetchCtx, gen, weekISO)
			return nil
		})
		g.Go(func() error {
			c.loadRecipes(base, recipesGen)
			return nil
		})
		_ = g.Wait()
	}()
}

// NavigateWeek moves the view one week back or forward and refetches entries.
func (c *Controller) NavigateWeek(dir Direction) error {
	if dir != Previous && dir != Next {
		return ErrInvalidDirection
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.weekStart = week.Shift(c.weekStart, int(dir))
	fetchCtx, gen, weekISO := c.beginFetchLocked(c.baseCtx)
	c.wg.Add(1)
	c.mu.Unlock()
	c.notify()

	go c.fetchInBackground(fetchCtx, gen, weekISO)
	return nil
}

// Reload refetches the entries of the current week in the background.
func (c *Controller) Reload() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	fetchCtx, gen, weekISO := c.beginFetchLocked(c.baseCtx)
	c.wg.Add(1)
	c.mu.Unlock()
	c.notify()

	go c.fetchInBackground(fetchCtx, gen, weekISO)
}

// ReloadRecipes refetches the selector catalog in the background, e.g. after
// recipes were added or deleted elsewhere.
func (c *Controller) ReloadRecipes() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.recipesGen++
	gen, ctx := c.recipesGen, c.baseCtx
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		c.loadRecipes(ctx, gen)
	}()
}

// AddEntry puts recipeID into (day, slot) of the current week. On success the
// week is reloaded before returning. On failure the state is left as is.
func (c *Controller) AddEntry(ctx context.Context, day int, slot string, recipeID int64) error {
	req := mealplans.CreateEntryRequest{
		WeekStart: c.State().WeekStartISO(),
		DayOfWeek: day,
		MealSlot:  slot,
		RecipeID:  recipeID,
	}
	if _, err := c.mealPlans.Create(ctx, req); err != nil {
		c.logger.Error("add meal plan entry failed",
			zap.String("week_start", req.WeekStart),
			zap.Int("day", day),
			zap.String("slot", slot),
			zap.Int64("recipe_id", recipeID),
			zap.Error(err),
		)
		return err
	}

	c.reloadSync(ctx)
	return nil
}

// RemoveEntry deletes the entry and reloads the week before returning.
func (c *Controller) RemoveEntry(ctx context.Context, id int64) error {
	if err := c.mealPlans.Delete(ctx, id); err != nil {
		c.logger.Error("remove meal plan entry failed", zap.Int64("entry_id", id), zap.Error(err))
		return err
	}

	c.reloadSync(ctx)
	return nil
}

// Entry returns the first entry in (day, slot) of the current week.
func (c *Controller) Entry(day int, slot string) (mealplans.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return findEntry(c.entries, day, slot)
}

// CandidateRecipes lists catalog recipes matching the slot's category.
func (c *Controller) CandidateRecipes(slot string) []recipes.Recipe {
	c.mu.Lock()
	catalog := c.catalog
	c.mu.Unlock()
	return slots.FilterByCategory(catalog, slots.CategoryFor(slot))
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait blocks until background fetches have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight fetches and waits for them. Later calls are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelBase()
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	c.mu.Unlock()

	c.wg.Wait()
}

// beginFetchLocked starts a new generation: the previous request is
// cancelled and its response will be ignored. Caller holds mu.
func (c *Controller) beginFetchLocked(parent context.Context) (context.Context, uint64, string) {
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	ctx, cancel := context.WithCancel(parent)
	c.cancelFetch = cancel
	c.gen++
	c.loading = true
	c.errMsg = ""
	c.version++
	return ctx, c.gen, week.ISODate(c.weekStart)
}

// fetchInBackground expects wg.Add(1) to have been done under mu.
func (c *Controller) fetchInBackground(ctx context.Context, gen uint64, weekISO string) {
	defer c.wg.Done()
	c.runFetch(ctx, gen, weekISO)
}

func (c *Controller) reloadSync(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	fetchCtx, gen, weekISO := c.beginFetchLocked(ctx)
	c.mu.Unlock()
	c.notify()

	c.runFetch(fetchCtx, gen, weekISO)
}

func (c *Controller) runFetch(ctx context.Context, gen uint64, weekISO string) {
	entries, err := c.mealPlans.List(ctx, weekISO)

	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		c.logger.Debug("discarding stale meal plan response", zap.String("week_start", weekISO), zap.Uint64("generation", gen))
		return
	}
	if err != nil {
		c.errMsg = LoadErrorMessage
	} else {
		c.entries = entries
		if c.entries == nil {
			c.entries = []mealplans.Entry{}
		}
	}
	c.loading = false
	c.version++
	c.cancelFetch()
	c.cancelFetch = nil
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("load meal plan failed", zap.String("week_start", weekISO), zap.Error(err))
	}
	c.notify()
}

// loadRecipes fills the selector catalog. A failure leaves it as it was.
func (c *Controller) loadRecipes(ctx context.Context, gen uint64) {
	list, err := c.recipes.List(ctx)
	if err != nil {
		c.logger.Error("load recipes failed", zap.Error(err))
		return
	}

	c.mu.Lock()
	if gen != c.recipesGen || c.closed {
		c.mu.Unlock()
		return
	}
	c.catalog = list
	if c.catalog == nil {
		c.catalog = []recipes.Recipe{}
	}
	c.version++
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	if c.onChange == nil {
		return
	}
	c.onChange(c.State())
}

func (c *Controller) snapshotLocked() State {
	return State{
		WeekStart: c.weekStart,
		Entries:   append(make([]mealplans.Entry, 0, len(c.entries)), c.entries...),
		Recipes:   append(make([]recipes.Recipe, 0, len(c.catalog)), c.catalog...),
		Loading:   c.loading,
		Error:     c.errMsg,
		Version:   c.version,
	}
}

func findEntry(entries []mealplans.Entry, day int, slot string) (mealplans.Entry, bool) {
	for _, e := range entries {
		if e.DayOfWeek == day && e.MealSlot == slot {
			return e, true
		}
	}
	return mealplans.Entry{}, false
}
