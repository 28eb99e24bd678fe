package observation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	records map[uuid.UUID]*Observation
	failing bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[uuid.UUID]*Observation)}
}

func (m *mockRepo) Create(_ context.Context, o *Observation) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = time.Now()
	m.records[o.ID] = o
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Observation, error) {
	o, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (m *mockRepo) ListByResidentAndCategory(_ context.Context, residentID uuid.UUID, category Category, dateFrom, dateTo string) ([]*Observation, error) {
	if m.failing {
		return nil, fmt.Errorf("store unavailable")
	}
	var result []*Observation
	for _, o := range m.records {
		if o.ResidentID != residentID || o.Category != category || o.DeletedAt != nil {
			continue
		}
		if o.Date < dateFrom || o.Date > dateTo {
			continue
		}
		result = append(result, o)
	}
	return result, nil
}

type fixedTimezone string

func (z fixedTimezone) Timezone(_ context.Context, _ string) (string, error) {
	return string(z), nil
}

func strPtr(s string) *string { return &s }

func seed(repo *mockRepo, residentID uuid.UUID, category Category, date string, tod *string, payload map[string]interface{}) *Observation {
	o := &Observation{
		ID:         uuid.New(),
		ResidentID: residentID,
		Category:   category,
		Date:       date,
		Time:       tod,
		Payload:    payload,
	}
	repo.records[o.ID] = o
	return o
}

func TestMatchesInWindow_InclusiveBounds(t *testing.T) {
	repo := newMockRepo()
	resident := uuid.New()
	agg := NewAggregator(repo, fixedTimezone("America/Sao_Paulo"))

	// Reference: 2025-06-10 20:00 local. 24h window starts 2025-06-09 20:00.
	seed(repo, resident, CategoryElimination, "2025-06-09", strPtr("20:00"), nil) // exactly on the lower bound
	seed(repo, resident, CategoryElimination, "2025-06-09", strPtr("19:59"), nil) // just outside
	seed(repo, resident, CategoryElimination, "2025-06-10", strPtr("20:00"), nil) // exactly on the upper bound
	seed(repo, resident, CategoryElimination, "2025-06-10", strPtr("08:00"), nil)

	loc, _ := time.LoadLocation("America/Sao_Paulo")
	ref := time.Date(2025, 6, 10, 20, 0, 0, 0, loc)

	matches, err := agg.MatchesInWindow(context.Background(), "casa_verde", resident, CategoryElimination, ref, 24*time.Hour, nil)
	if err != nil {
		t.Fatalf("MatchesInWindow: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches (both bounds inclusive), got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Instant.Before(matches[i-1].Instant) {
			t.Error("matches not ordered by instant")
		}
	}
}

func TestMatchesInWindow_MissingTimeOfDayIsStartOfDay(t *testing.T) {
	repo := newMockRepo()
	resident := uuid.New()
	agg := NewAggregator(repo, fixedTimezone("America/Sao_Paulo"))

	seed(repo, resident, CategoryFeeding, "2025-06-10", nil, nil)

	loc, _ := time.LoadLocation("America/Sao_Paulo")

	// Window [09 06:00, 10 06:00] catches the untimed observation at start of day.
	ref := time.Date(2025, 6, 10, 6, 0, 0, 0, loc)
	matches, err := agg.MatchesInWindow(context.Background(), "casa_verde", resident, CategoryFeeding, ref, 24*time.Hour, nil)
	if err != nil {
		t.Fatalf("MatchesInWindow: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Instant.In(loc).Hour() != 0 {
		t.Errorf("expected start-of-day instant, got %v", matches[0].Instant.In(loc))
	}

	// A window ending the previous evening must not see it.
	ref = time.Date(2025, 6, 9, 22, 0, 0, 0, loc)
	matches, err = agg.MatchesInWindow(context.Background(), "casa_verde", resident, CategoryFeeding, ref, 24*time.Hour, nil)
	if err != nil {
		t.Fatalf("MatchesInWindow: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected 0 matches, got %d", len(matches))
	}
}

func TestMatchesInWindow_CrossesCivilDateBoundary(t *testing.T) {
	repo := newMockRepo()
	resident := uuid.New()
	agg := NewAggregator(repo, fixedTimezone("America/Sao_Paulo"))

	// 23:30 the previous civil day is 30 minutes before a 00:15 reference;
	// the civil-date pre-filter must not lose it.
	seed(repo, resident, CategoryElimination, "2025-06-09", strPtr("23:30"), nil)

	loc, _ := time.LoadLocation("America/Sao_Paulo")
	ref := time.Date(2025, 6, 10, 0, 15, 0, 0, loc)

	matches, err := agg.MatchesInWindow(context.Background(), "casa_verde", resident, CategoryElimination, ref, 2*time.Hour, nil)
	if err != nil {
		t.Fatalf("MatchesInWindow: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("expected 1 match across the midnight boundary, got %d", len(matches))
	}
}

func TestMatchesInWindow_AppliesMatchFunc(t *testing.T) {
	repo := newMockRepo()
	resident := uuid.New()
	agg := NewAggregator(repo, fixedTimezone("America/Sao_Paulo"))

	seed(repo, resident, CategoryElimination, "2025-06-10", strPtr("08:00"),
		map[string]interface{}{"type": "Fezes", "consistency": "líquida"})
	seed(repo, resident, CategoryElimination, "2025-06-10", strPtr("09:00"),
		map[string]interface{}{"type": "Fezes", "consistency": "normal"})

	loc, _ := time.LoadLocation("America/Sao_Paulo")
	ref := time.Date(2025, 6, 10, 12, 0, 0, 0, loc)

	count, err := agg.CountInWindow(context.Background(), "casa_verde", resident, CategoryElimination, ref, 24*time.Hour,
		func(o *Observation) bool { return o.PayloadString("consistency") == "líquida" })
	if err != nil {
		t.Fatalf("CountInWindow: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 filtered match, got %d", count)
	}
}

func TestMatchesInWindow_SurfacesStoreErrors(t *testing.T) {
	repo := newMockRepo()
	repo.failing = true
	agg := NewAggregator(repo, fixedTimezone("America/Sao_Paulo"))

	loc, _ := time.LoadLocation("America/Sao_Paulo")
	ref := time.Date(2025, 6, 10, 12, 0, 0, 0, loc)

	_, err := agg.MatchesInWindow(context.Background(), "casa_verde", uuid.New(), CategoryElimination, ref, 24*time.Hour, nil)
	if err == nil {
		t.Fatal("expected store error to surface")
	}
}

func TestMatchesOnDate(t *testing.T) {
	repo := newMockRepo()
	resident := uuid.New()
	agg := NewAggregator(repo, fixedTimezone("America/Sao_Paulo"))

	seed(repo, resident, CategoryFeeding, "2025-06-10", strPtr("08:00"),
		map[string]interface{}{"intake": "Recusou"})
	seed(repo, resident, CategoryFeeding, "2025-06-10", strPtr("12:00"),
		map[string]interface{}{"intake": "100%"})
	seed(repo, resident, CategoryFeeding, "2025-06-11", strPtr("08:00"),
		map[string]interface{}{"intake": "Recusou"})

	refusals, err := agg.MatchesOnDate(context.Background(), "casa_verde", resident, CategoryFeeding, "2025-06-10",
		func(o *Observation) bool { return o.PayloadString("intake") == "Recusou" })
	if err != nil {
		t.Fatalf("MatchesOnDate: %v", err)
	}
	if len(refusals) != 1 {
		t.Errorf("expected 1 refusal on 2025-06-10, got %d", len(refusals))
	}
}

func TestResolveInstant_BadTimezone(t *testing.T) {
	repo := newMockRepo()
	agg := NewAggregator(repo, fixedTimezone("Not/AZone"))

	o := &Observation{Date: "2025-06-10"}
	if _, err := agg.ResolveInstant(context.Background(), "casa_verde", o); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
