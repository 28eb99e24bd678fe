package observation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/viverecare/vivere/pkg/civiltime"
)

// TimezoneSource resolves a tenant's IANA timezone. The store keeps civil
// dates and wall-clock times exactly as recorded; this is what turns them
// back into instants.
type TimezoneSource interface {
	Timezone(ctx context.Context, tenantID string) (string, error)
}

// Match is one observation together with its reconstructed absolute instant.
type Match struct {
	Observation *Observation
	Instant     time.Time
}

// MatchFunc filters candidate observations by payload.
type MatchFunc func(*Observation) bool

// Aggregator answers trailing-window queries over prior observations. The
// store can only filter on civil dates, so queries pre-filter with a one-day
// margin on either side of the window and then post-filter precisely on
// reconstructed instants.
type Aggregator struct {
	repo Repository
	tz   TimezoneSource
}

func NewAggregator(repo Repository, tz TimezoneSource) *Aggregator {
	return &Aggregator{repo: repo, tz: tz}
}

// Location resolves the tenant's timezone into a *time.Location.
func (a *Aggregator) Location(ctx context.Context, tenantID string) (*time.Location, error) {
	zone, err := a.tz.Timezone(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load tenant timezone %q: %w", zone, err)
	}
	return loc, nil
}

// ResolveInstant reconstructs an observation's absolute instant in the
// tenant's timezone. A missing time of day resolves to the start of the
// civil day.
func (a *Aggregator) ResolveInstant(ctx context.Context, tenantID string, o *Observation) (time.Time, error) {
	loc, err := a.Location(ctx, tenantID)
	if err != nil {
		return time.Time{}, err
	}
	return civiltime.Resolve(o.Date, o.TimeOfDay(), loc)
}

// MatchesInWindow returns the observations for one resident and category whose
// reconstructed instant falls in [ref-window, ref], inclusive on both ends,
// filtered by match (nil matches everything) and ordered by instant ascending.
func (a *Aggregator) MatchesInWindow(ctx context.Context, tenantID string, residentID uuid.UUID, category Category, ref time.Time, window time.Duration, match MatchFunc) ([]Match, error) {
	loc, err := a.Location(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	from := ref.Add(-window)

	// Civil-date pre-filter with a one-day margin: a stored date can map to
	// an instant up to a day away from the window edge depending on the zone.
	dateFrom := civiltime.DateOf(from.AddDate(0, 0, -1), loc)
	dateTo := civiltime.DateOf(ref.AddDate(0, 0, 1), loc)

	candidates, err := a.repo.ListByResidentAndCategory(ctx, residentID, category, dateFrom, dateTo)
	if err != nil {
		return nil, fmt.Errorf("window query for resident %s: %w", residentID, err)
	}

	var matches []Match
	for _, o := range candidates {
		instant, err := civiltime.Resolve(o.Date, o.TimeOfDay(), loc)
		if err != nil {
			return nil, fmt.Errorf("observation %s has unreadable civil timestamp: %w", o.ID, err)
		}
		if instant.Before(from) || instant.After(ref) {
			continue
		}
		if match != nil && !match(o) {
			continue
		}
		matches = append(matches, Match{Observation: o, Instant: instant})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Instant.Before(matches[j].Instant)
	})
	return matches, nil
}

// CountInWindow is MatchesInWindow reduced to its cardinality.
func (a *Aggregator) CountInWindow(ctx context.Context, tenantID string, residentID uuid.UUID, category Category, ref time.Time, window time.Duration, match MatchFunc) (int, error) {
	matches, err := a.MatchesInWindow(ctx, tenantID, residentID, category, ref, window, match)
	if err != nil {
		return 0, err
	}
	return len(matches), nil
}

// MatchesOnDate returns the observations for one resident and category
// recorded on the given civil date, filtered by match. Used by rules whose
// escalation is scoped to the calendar day rather than a rolling window.
func (a *Aggregator) MatchesOnDate(ctx context.Context, tenantID string, residentID uuid.UUID, category Category, civilDate string, match MatchFunc) ([]*Observation, error) {
	candidates, err := a.repo.ListByResidentAndCategory(ctx, residentID, category, civilDate, civilDate)
	if err != nil {
		return nil, fmt.Errorf("date query for resident %s: %w", residentID, err)
	}

	var out []*Observation
	for _, o := range candidates {
		if match != nil && !match(o) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
