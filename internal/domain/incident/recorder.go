package incident

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Recorder turns deduplicated INCIDENT candidates into persisted incidents
// and announces them on the bus.
type Recorder struct {
	repo    Repository
	dedup   *Deduplicator
	bus     *Bus
	log     zerolog.Logger
	metrics *Metrics
}

func NewRecorder(repo Repository, dedup *Deduplicator, bus *Bus, log zerolog.Logger, metrics *Metrics) *Recorder {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Recorder{
		repo:    repo,
		dedup:   dedup,
		bus:     bus,
		log:     log.With().Str("component", "incident_recorder").Logger(),
		metrics: metrics,
	}
}

// Record persists the candidate unless an equivalent incident already exists.
// Returns (nil, nil) on a dedup skip. Event delivery failures never surface
// to the caller; the bus logs and swallows them.
func (r *Recorder) Record(ctx context.Context, tenantID string, cand *Candidate) (*Incident, error) {
	if cand.Disposition != DispositionIncident {
		return nil, fmt.Errorf("candidate from rule %s has disposition %s, not %s", cand.RuleID, cand.Disposition, DispositionIncident)
	}

	exists, err := r.dedup.Exists(ctx, tenantID, cand)
	if err != nil {
		return nil, fmt.Errorf("dedup check: %w", err)
	}
	if exists {
		r.metrics.IncidentsSkipped.WithLabelValues(string(cand.Subtype)).Inc()
		r.log.Debug().
			Str("tenant_id", tenantID).
			Str("rule", cand.RuleID).
			Str("resident_id", cand.Source.ResidentID.String()).
			Str("subtype", string(cand.Subtype)).
			Msg("equivalent incident already exists, skipping")
		return nil, nil
	}

	src := cand.Source
	sourceID := src.ID
	inc := &Incident{
		ResidentID:          src.ResidentID,
		Category:            cand.Category,
		Subtype:             cand.Subtype,
		Severity:            cand.Severity,
		Date:                src.Date,
		Time:                src.Time,
		Description:         cand.Description,
		ActionTaken:         cand.Action,
		IsSentinelEvent:     IsSentinel(cand.Category, cand.Subtype),
		Indicators:          cand.Indicators,
		SourceObservationID: &sourceID,
		AutoDetected:        true,
		AuthorID:            src.AuthorID,
		RecordedBy:          fmt.Sprintf("%s (detecção automática)", src.RecordedBy),
	}

	if err := r.repo.Create(ctx, inc); err != nil {
		return nil, fmt.Errorf("persist incident: %w", err)
	}

	r.metrics.IncidentsCreated.WithLabelValues(string(inc.Subtype), string(inc.Severity)).Inc()
	r.log.Info().
		Str("tenant_id", tenantID).
		Str("incident_id", inc.ID.String()).
		Str("resident_id", inc.ResidentID.String()).
		Str("subtype", string(inc.Subtype)).
		Str("severity", string(inc.Severity)).
		Bool("sentinel", inc.IsSentinelEvent).
		Msg("incident created by automatic detection")

	r.bus.Publish(ctx, CreatedEvent{TenantID: tenantID, Incident: inc})
	return inc, nil
}
