package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fdg312/mealcraft/internal/mealplans"
)

// MealPlans talks to /meal-plans.
type MealPlans struct {
	t *transport
}

// List returns the entries of the week starting at weekStart (YYYY-MM-DD).
func (s *MealPlans) List(ctx context.Context, weekStart string) ([]mealplans.Entry, error) {
	var resp mealplans.ListResponse
	q := url.Values{"week_start": {weekStart}}
	if err := s.t.do(ctx, http.MethodGet, "/meal-plans", q, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Entries == nil {
		return []mealplans.Entry{}, nil
	}
	return resp.Entries, nil
}

func (s *MealPlans) Create(ctx context.Context, req mealplans.CreateEntryRequest) (mealplans.Entry, error) {
	var resp mealplans.EntryResponse
	if err := s.t.do(ctx, http.MethodPost, "/meal-plans", nil, req, &resp); err != nil {
		return mealplans.Entry{}, err
	}
	return resp.Entry, nil
}

func (s *MealPlans) Delete(ctx context.Context, id int64) error {
	return s.t.do(ctx, http.MethodDelete, "/meal-plans/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// Export downloads the week document in format (pdf, csv or html).
func (s *MealPlans) Export(ctx context.Context, weekStart, format string) ([]byte, error) {
	q := url.Values{"week_start": {weekStart}}
	if format != "" {
		q.Set("format", format)
	}
	return s.t.send(ctx, http.MethodGet, "/meal-plans/export", q, nil, "*/*")
}
