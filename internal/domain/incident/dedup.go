package incident

import (
	"context"
	"fmt"

	"github.com/viverecare/vivere/internal/domain/observation"
	"github.com/viverecare/vivere/pkg/civiltime"
)

// Deduplicator decides whether an equivalent incident already exists for a
// candidate, according to the candidate's dedup policy. The check-then-create
// sequence is not atomic; a rare duplicate under concurrent writes for the
// same resident is accepted (the incident table carries a partial unique
// index on source_observation_id as a second line of defense).
type Deduplicator struct {
	repo Repository
	agg  *observation.Aggregator
}

func NewDeduplicator(repo Repository, agg *observation.Aggregator) *Deduplicator {
	return &Deduplicator{repo: repo, agg: agg}
}

func (d *Deduplicator) Exists(ctx context.Context, tenantID string, cand *Candidate) (bool, error) {
	switch cand.Dedup {
	case DedupCalendarDay:
		return d.repo.ExistsOnDate(ctx, cand.Source.ResidentID, cand.Category, cand.Subtype, cand.Source.Date)
	case DedupSourceRecord:
		return d.repo.ExistsForSource(ctx, cand.Source.ResidentID, cand.Category, cand.Subtype, cand.Source.ID)
	case DedupWindow:
		return d.existsInWindow(ctx, tenantID, cand)
	default:
		return false, fmt.Errorf("unknown dedup policy %q", cand.Dedup)
	}
}

// existsInWindow pre-filters on civil date with a one-day margin around the
// candidate's trailing window, then compares reconstructed instants.
func (d *Deduplicator) existsInWindow(ctx context.Context, tenantID string, cand *Candidate) (bool, error) {
	loc, err := d.agg.Location(ctx, tenantID)
	if err != nil {
		return false, err
	}

	from := cand.Instant.Add(-cand.Window)
	dateFrom := from.In(loc).AddDate(0, 0, -1).Format(civiltime.DateLayout)
	dateTo := cand.Instant.In(loc).AddDate(0, 0, 1).Format(civiltime.DateLayout)

	prior, err := d.repo.ListByResidentAndKind(ctx, cand.Source.ResidentID, cand.Category, cand.Subtype, dateFrom, dateTo)
	if err != nil {
		return false, err
	}
	for _, inc := range prior {
		tod := ""
		if inc.Time != nil {
			tod = *inc.Time
		}
		instant, err := civiltime.Resolve(inc.Date, tod, loc)
		if err != nil {
			return false, fmt.Errorf("resolve incident %s civil time: %w", inc.ID, err)
		}
		if !instant.Before(from) && !instant.After(cand.Instant) {
			return true, nil
		}
	}
	return false, nil
}
