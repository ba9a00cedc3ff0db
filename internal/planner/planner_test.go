package planner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fdg312/mealcraft/internal/mealplans"
	"github.com/fdg312/mealcraft/internal/recipes"
	"github.com/fdg312/mealcraft/internal/week"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePlans struct {
	mu       sync.Mutex
	entries  []mealplans.Entry
	nextID   int64
	listErr  map[string]error
	block    map[string]chan struct{}
	listed   []string
	createEr error
	deleteEr error
}

func newFakePlans() *fakePlans {
	return &fakePlans{listErr: map[string]error{}, block: map[string]chan struct{}{}}
}

func (f *fakePlans) List(ctx context.Context, weekStart string) ([]mealplans.Entry, error) {
	f.mu.Lock()
	f.listed = append(f.listed, weekStart)
	gate := f.block[weekStart]
	f.mu.Unlock()

	if gate != nil {
		<-gate // ignores ctx on purpose: the response arrives late anyway
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.listErr[weekStart]; err != nil {
		return nil, err
	}
	var out []mealplans.Entry
	for _, e := range f.entries {
		if e.WeekStart == weekStart {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakePlans) Create(ctx context.Context, req mealplans.CreateEntryRequest) (mealplans.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createEr != nil {
		return mealplans.Entry{}, f.createEr
	}
	f.nextID++
	e := mealplans.Entry{
		ID:         f.nextID,
		WeekStart:  req.WeekStart,
		DayOfWeek:  req.DayOfWeek,
		MealSlot:   req.MealSlot,
		RecipeID:   req.RecipeID,
		RecipeName: "Recipe",
	}
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakePlans) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteEr != nil {
		return f.deleteEr
	}
	for i, e := range f.entries {
		if e.ID == id {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return errors.New("HTTP error! status: 404")
}

func (f *fakePlans) listCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.listed...)
}

type fakeRecipes struct {
	mu    sync.Mutex
	list  []recipes.Recipe
	err   error
	calls int
}

func (f *fakeRecipes) List(ctx context.Context) ([]recipes.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func clockAt(y int, m time.Month, d int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, 15, 30, 0, 0, time.Local) }
}

func newController(t *testing.T, plans *fakePlans, rec *fakeRecipes, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithClock(clockAt(2026, time.March, 4))}, opts...)
	c := New(plans, rec, opts...)
	t.Cleanup(c.Close)
	return c
}

func TestStart_LoadsCurrentWeekAndCatalog(t *testing.T) {
	plans := newFakePlans()
	plans.entries = []mealplans.Entry{{ID: 1, WeekStart: "2026-03-02", DayOfWeek: 0, MealSlot: "breakfast", RecipeName: "Pancakes"}}
	rec := &fakeRecipes{list: []recipes.Recipe{{ID: 1, Name: "Pancakes", Category: "breakfast"}}}
	c := newController(t, plans, rec)

	c.Start(context.Background())
	c.Wait()

	st := c.State()
	assert.Equal(t, "2026-03-02", st.WeekStartISO())
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	require.Len(t, st.Entries, 1)
	assert.Len(t, st.Recipes, 1)
	assert.Equal(t, []string{"2026-03-02"}, plans.listCalls())
}

func TestStart_MidWeekDateResolvesToMonday(t *testing.T) {
	// Tuesday 2026-03-03 belongs to the week of Monday 2026-03-02
	c := newController(t, newFakePlans(), &fakeRecipes{}, WithClock(clockAt(2026, time.March, 3)))

	c.Start(context.Background())
	c.Wait()

	assert.Equal(t, "2026-03-02", c.State().WeekStartISO())
}

func TestStart_SundayBelongsToPreviousMonday(t *testing.T) {
	c := newController(t, newFakePlans(), &fakeRecipes{}, WithClock(clockAt(2026, time.March, 8)))

	c.Start(context.Background())
	c.Wait()

	assert.Equal(t, "2026-03-02", c.State().WeekStartISO())
}

func TestNavigateWeek(t *testing.T) {
	plans := newFakePlans()
	rec := &fakeRecipes{}
	c := newController(t, plans, rec)
	c.Start(context.Background())
	c.Wait()

	require.NoError(t, c.NavigateWeek(Next))
	c.Wait()
	assert.Equal(t, "2026-03-09", c.State().WeekStartISO())

	require.NoError(t, c.NavigateWeek(Previous))
	c.Wait()
	require.NoError(t, c.NavigateWeek(Previous))
	c.Wait()
	assert.Equal(t, "2026-02-23", c.State().WeekStartISO())

	calls := plans.listCalls()
	assert.Len(t, calls, 4)
	assert.Equal(t, "2026-02-23", calls[len(calls)-1])

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 1, rec.calls, "navigation never refetches the catalog")
}

func TestNavigateWeek_InvalidDirection(t *testing.T) {
	plans := newFakePlans()
	c := newController(t, plans, &fakeRecipes{})

	for _, dir := range []Direction{0, 2, -7} {
		assert.ErrorIs(t, c.NavigateWeek(dir), ErrInvalidDirection)
	}
	c.Wait()
	assert.Empty(t, plans.listCalls())
	assert.Equal(t, "2026-03-02", c.State().WeekStartISO())
}

func TestLoadFailureKeepsLastGoodEntries(t *testing.T) {
	plans := newFakePlans()
	plans.entries = []mealplans.Entry{{ID: 7, WeekStart: "2026-03-02", DayOfWeek: 1, MealSlot: "lunch"}}
	plans.listErr["2026-03-09"] = errors.New("HTTP error! status: 500")
	c := newController(t, plans, &fakeRecipes{})
	c.Start(context.Background())
	c.Wait()

	require.NoError(t, c.NavigateWeek(Next))
	c.Wait()

	st := c.State()
	assert.Equal(t, LoadErrorMessage, st.Error)
	assert.False(t, st.Loading)
	require.Len(t, st.Entries, 1)
	assert.Equal(t, int64(7), st.Entries[0].ID)

	// a new fetch clears the error
	plans.mu.Lock()
	delete(plans.listErr, "2026-03-09")
	plans.mu.Unlock()
	c.Reload()
	c.Wait()
	st = c.State()
	assert.Empty(t, st.Error)
	assert.Empty(t, st.Entries)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	plans := newFakePlans()
	plans.entries = []mealplans.Entry{
		{ID: 1, WeekStart: "2026-03-02", DayOfWeek: 0, MealSlot: "dinner", RecipeName: "Old"},
		{ID: 2, WeekStart: "2026-03-09", DayOfWeek: 0, MealSlot: "dinner", RecipeName: "New"},
	}
	gate := make(chan struct{})
	plans.block["2026-03-02"] = gate
	c := newController(t, plans, &fakeRecipes{})

	c.Start(context.Background())
	require.NoError(t, c.NavigateWeek(Next))

	require.Eventually(t, func() bool {
		st := c.State()
		return !st.Loading && len(st.Entries) == 1
	}, time.Second, 5*time.Millisecond)

	close(gate)
	c.Wait()

	st := c.State()
	assert.Equal(t, "2026-03-09", st.WeekStartISO())
	require.Len(t, st.Entries, 1)
	assert.Equal(t, "New", st.Entries[0].RecipeName)
	assert.False(t, st.Loading)
}

func TestNavigateTwiceBeforeFirstFetchResolves(t *testing.T) {
	plans := newFakePlans()
	plans.entries = []mealplans.Entry{
		{ID: 1, WeekStart: "2026-03-09", DayOfWeek: 2, MealSlot: "lunch", RecipeName: "Skipped"},
		{ID: 2, WeekStart: "2026-03-16", DayOfWeek: 2, MealSlot: "lunch", RecipeName: "Shown"},
	}
	c := newController(t, plans, &fakeRecipes{})
	c.Start(context.Background())
	c.Wait()

	gate := make(chan struct{})
	plans.mu.Lock()
	plans.block["2026-03-09"] = gate
	plans.mu.Unlock()

	require.NoError(t, c.NavigateWeek(Next))
	require.NoError(t, c.NavigateWeek(Next))

	require.Eventually(t, func() bool { return !c.State().Loading }, time.Second, 5*time.Millisecond)
	close(gate)
	c.Wait()

	st := c.State()
	assert.Equal(t, "2026-03-16", st.WeekStartISO())
	require.Len(t, st.Entries, 1)
	assert.Equal(t, "Shown", st.Entries[0].RecipeName)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
}

func TestReloadRecipes(t *testing.T) {
	rec := &fakeRecipes{list: []recipes.Recipe{{ID: 1, Name: "Steak", Category: "dinner"}}}
	c := newController(t, newFakePlans(), rec)
	c.Start(context.Background())
	c.Wait()
	require.Len(t, c.CandidateRecipes("dinner"), 1)

	rec.mu.Lock()
	rec.list = []recipes.Recipe{
		{ID: 2, Name: "Risotto", Category: "Dinner"},
		{ID: 3, Name: "Tacos", Category: "dinner"},
	}
	rec.mu.Unlock()

	c.ReloadRecipes()
	c.Wait()

	got := c.CandidateRecipes("dinner")
	require.Len(t, got, 2)
	assert.Equal(t, "Risotto", got[0].Name)

	// a failed refresh keeps the previous catalog
	rec.mu.Lock()
	rec.err = errors.New("offline")
	rec.mu.Unlock()
	c.ReloadRecipes()
	c.Wait()
	assert.Len(t, c.CandidateRecipes("dinner"), 2)
	assert.Empty(t, c.State().Error)
}

func TestAddEntry(t *testing.T) {
	plans := newFakePlans()
	c := newController(t, plans, &fakeRecipes{})
	c.Start(context.Background())
	c.Wait()

	require.NoError(t, c.AddEntry(context.Background(), 3, "lunch", 42))

	e, ok := c.Entry(3, "lunch")
	require.True(t, ok)
	assert.Equal(t, int64(42), e.RecipeID)
	assert.Equal(t, "2026-03-02", e.WeekStart)

	_, ok = c.Entry(3, "dinner")
	assert.False(t, ok)
}

func TestAddEntry_FailureLeavesStateUntouched(t *testing.T) {
	plans := newFakePlans()
	plans.createEr = errors.New("HTTP error! status: 404")
	c := newController(t, plans, &fakeRecipes{})
	c.Start(context.Background())
	c.Wait()
	before := c.State()

	err := c.AddEntry(context.Background(), 0, "breakfast", 99)

	require.Error(t, err)
	assert.Equal(t, before, c.State())
	assert.Len(t, plans.listCalls(), 1)
}

func TestRemoveEntry(t *testing.T) {
	plans := newFakePlans()
	plans.entries = []mealplans.Entry{{ID: 5, WeekStart: "2026-03-02", DayOfWeek: 6, MealSlot: "dinner"}}
	plans.nextID = 5
	c := newController(t, plans, &fakeRecipes{})
	c.Start(context.Background())
	c.Wait()

	_, ok := c.Entry(6, "dinner")
	require.True(t, ok)

	require.NoError(t, c.RemoveEntry(context.Background(), 5))
	_, ok = c.Entry(6, "dinner")
	assert.False(t, ok)

	plans.deleteEr = errors.New("boom")
	require.NoError(t, c.AddEntry(context.Background(), 0, "lunch", 1))
	before := c.State()
	assert.Error(t, c.RemoveEntry(context.Background(), 6))
	assert.Equal(t, before, c.State())
}

func TestCatalogFailureOnlyLogs(t *testing.T) {
	c := newController(t, newFakePlans(), &fakeRecipes{err: errors.New("offline")})

	c.Start(context.Background())
	c.Wait()

	st := c.State()
	assert.Empty(t, st.Error)
	assert.Empty(t, st.Recipes)
	assert.Empty(t, c.CandidateRecipes("dinner"))
}

func TestCandidateRecipes(t *testing.T) {
	rec := &fakeRecipes{list: []recipes.Recipe{
		{ID: 1, Name: "Granola", Category: "Snack"},
		{ID: 2, Name: "Steak", Category: "dinner"},
		{ID: 3, Name: "Popcorn", Category: "snack"},
		{ID: 4, Name: "Mystery", Category: "brunch"},
	}}
	c := newController(t, newFakePlans(), rec)
	c.Start(context.Background())
	c.Wait()

	names := func(list []recipes.Recipe) []string {
		out := make([]string, 0, len(list))
		for _, r := range list {
			out = append(out, r.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Granola", "Popcorn"}, names(c.CandidateRecipes("morning_snack")))
	assert.Equal(t, []string{"Granola", "Popcorn"}, names(c.CandidateRecipes("afternoon_snack")))
	assert.Equal(t, []string{"Steak"}, names(c.CandidateRecipes("dinner")))
	// unmapped slots fall back to dinner
	assert.Equal(t, []string{"Steak"}, names(c.CandidateRecipes("supper")))
}

func TestOnChangeReceivesIncreasingVersions(t *testing.T) {
	var mu sync.Mutex
	var seen []State
	c := newController(t, newFakePlans(), &fakeRecipes{}, WithOnChange(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}))

	c.Start(context.Background())
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.True(t, seen[0].Loading, "first notification announces the fetch")
	var maxVersion uint64
	for _, s := range seen {
		if s.Version > maxVersion {
			maxVersion = s.Version
		}
	}
	assert.Equal(t, c.State().Version, maxVersion)
}

func TestCloseCancelsInFlightFetch(t *testing.T) {
	plans := &ctxPlans{}
	c := New(plans, &fakeRecipes{}, WithClock(clockAt(2026, time.March, 4)))

	c.Start(context.Background())
	c.Close()

	st := c.State()
	assert.Empty(t, st.Error, "a cancelled fetch after Close is not reported")
	assert.NoError(t, c.NavigateWeek(Next))
	c.Close()
}

// ctxPlans blocks List until the request context is cancelled.
type ctxPlans struct{}

func (ctxPlans) List(ctx context.Context, weekStart string) ([]mealplans.Entry, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (ctxPlans) Create(ctx context.Context, req mealplans.CreateEntryRequest) (mealplans.Entry, error) {
	return mealplans.Entry{}, nil
}

func (ctxPlans) Delete(ctx context.Context, id int64) error { return nil }

func TestStateSnapshotIsACopy(t *testing.T) {
	plans := newFakePlans()
	plans.entries = []mealplans.Entry{{ID: 1, WeekStart: "2026-03-02", MealSlot: "lunch"}}
	c := newController(t, plans, &fakeRecipes{})
	c.Start(context.Background())
	c.Wait()

	st := c.State()
	st.Entries[0].MealSlot = "dinner"

	_, ok := c.Entry(0, "lunch")
	assert.True(t, ok)
	assert.Equal(t, week.StartOfWeek(clockAt(2026, time.March, 4)()), st.WeekStart)
}
