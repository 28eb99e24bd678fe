package incident

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/viverecare/vivere/internal/domain/notification"
	"github.com/viverecare/vivere/internal/domain/observation"
)

type pipeline struct {
	store     *obsStore
	incidents *incRepo
	notifs    *notifRepo
	detector  *Detector
	bus       *Bus
}

func newPipeline(resolver notification.RecipientResolver) *pipeline {
	store := &obsStore{}
	agg := testAggregator(store)
	incidents := &incRepo{}
	notifs := &notifRepo{}

	bus := NewBus(zerolog.Nop())
	recorder := NewRecorder(incidents, NewDeduplicator(incidents, agg), bus, zerolog.Nop(), nil)
	notifier := notification.NewService(notifs, zerolog.Nop())
	if resolver == nil {
		resolver = &stubResolver{}
	}
	detector := NewDetector(Rules(), agg, recorder, notifier, resolver, zerolog.Nop(), nil)

	return &pipeline{store: store, incidents: incidents, notifs: notifs, detector: detector, bus: bus}
}

// record persists the observation and runs detection, the way the ingestion
// handler drives the pipeline.
func (p *pipeline) record(t *testing.T, o *observation.Observation) {
	t.Helper()
	if err := p.store.Create(context.Background(), o); err != nil {
		t.Fatalf("store observation: %v", err)
	}
	p.detector.OnObservationCreated(context.Background(), testTenant, o, uuid.NewString())
}

func TestDetector_DiarrheaThresholdLifecycle(t *testing.T) {
	p := newPipeline(nil)
	resident := uuid.New()

	// Two episodes: alerts only, no incidents.
	p.record(t, newObs(resident, observation.CategoryElimination, "2025-06-10", "06:00", stool("líquida")))
	p.record(t, newObs(resident, observation.CategoryElimination, "2025-06-10", "10:00", stool("líquida")))

	if len(p.incidents.records) != 0 {
		t.Fatalf("expected no incidents below threshold, got %d", len(p.incidents.records))
	}
	if len(p.notifs.records) != 2 {
		t.Fatalf("expected 2 monitoring alerts, got %d", len(p.notifs.records))
	}

	// Third episode crosses the threshold: two incidents, no further alert.
	p.record(t, newObs(resident, observation.CategoryElimination, "2025-06-10", "14:00", stool("líquida")))

	if len(p.incidents.records) != 2 {
		t.Fatalf("expected 2 incidents at threshold, got %d", len(p.incidents.records))
	}
	if len(p.notifs.records) != 2 {
		t.Errorf("threshold crossing must not add alerts, got %d notifications", len(p.notifs.records))
	}
	if got := p.incidents.bySubtype(SubtypeAcuteDiarrhea); len(got) != 1 {
		t.Errorf("expected 1 acute diarrheal disease incident, got %d", len(got))
	}
	if got := p.incidents.bySubtype(SubtypeDehydration); len(got) != 1 {
		t.Errorf("expected 1 dehydration incident, got %d", len(got))
	}

	// Fourth episode inside the same window: both incidents deduplicate.
	p.record(t, newObs(resident, observation.CategoryElimination, "2025-06-10", "18:00", stool("líquida")))

	if len(p.incidents.records) != 2 {
		t.Errorf("fourth episode must not create more incidents, got %d", len(p.incidents.records))
	}
}

func TestDetector_AlertDirectedAtRecipients(t *testing.T) {
	recipients := []uuid.UUID{uuid.New(), uuid.New()}
	p := newPipeline(&stubResolver{ids: recipients})
	resident := uuid.New()

	p.record(t, newObs(resident, observation.CategoryElimination, "2025-06-10", "06:00", stool("líquida")))

	if len(p.notifs.records) != 1 {
		t.Fatalf("expected 1 alert notification, got %d", len(p.notifs.records))
	}
	n := p.notifs.records[0]
	if n.Type != notification.TypeIncidentAlert {
		t.Errorf("unexpected notification type %q", n.Type)
	}
	if n.Severity != notification.SeverityInfo {
		t.Errorf("single episode alert must be INFO, got %s", n.Severity)
	}
	if len(n.Recipients) != 2 {
		t.Errorf("expected a directed notification, got %d recipients", len(n.Recipients))
	}
}

func TestDetector_ResolverFailureDegradesToBroadcast(t *testing.T) {
	p := newPipeline(&stubResolver{err: errStore})
	resident := uuid.New()

	p.record(t, newObs(resident, observation.CategoryElimination, "2025-06-10", "06:00", stool("líquida")))

	if len(p.notifs.records) != 1 {
		t.Fatalf("expected the alert to survive resolver failure, got %d notifications", len(p.notifs.records))
	}
	if p.notifs.records[0].Recipients != nil {
		t.Error("expected broadcast when recipients cannot be resolved")
	}
}

func TestDetector_IgnoresCategoriesWithoutRules(t *testing.T) {
	p := newPipeline(nil)
	resident := uuid.New()

	p.record(t, newObs(resident, observation.CategoryVitals, "2025-06-10", "06:00",
		map[string]interface{}{"blood_pressure": "120x80"}))

	if len(p.incidents.records) != 0 || len(p.notifs.records) != 0 {
		t.Error("categories without rules must pass through silently")
	}
}

func TestDetector_NeverPanicsPastBoundary(t *testing.T) {
	p := newPipeline(nil)
	panicking := Rule{
		ID:       "test.panic",
		Category: observation.CategorySleep,
		Evaluate: func(context.Context, string, *observation.Observation, *observation.Aggregator) ([]Candidate, error) {
			panic("rule exploded")
		},
	}
	p.detector.rules = append(p.detector.rules, panicking)

	o := newObs(uuid.New(), observation.CategorySleep, "2025-06-10", "23:00", nil)
	// Must not panic.
	p.detector.OnObservationCreated(context.Background(), testTenant, o, uuid.NewString())
}

func TestDetector_SentinelIncidentReachesSubscribers(t *testing.T) {
	p := newPipeline(nil)

	var sentinel []*Incident
	p.bus.Subscribe(func(_ context.Context, ev CreatedEvent) {
		if ev.Incident.IsSentinelEvent {
			sentinel = append(sentinel, ev.Incident)
		}
	})

	// Hygiene lesion: incident but not sentinel.
	p.record(t, newObs(uuid.New(), observation.CategoryHygiene, "2025-06-10", "09:00",
		map[string]interface{}{"notes": "ferida no calcanhar"}))
	if len(sentinel) != 0 {
		t.Fatal("pressure ulcer must not reach sentinel subscribers")
	}

	// A fall with injury recorded through the recorder is sentinel.
	rec := p.detector.recorder
	if _, err := rec.Record(context.Background(), testTenant, fallCandidate(uuid.New())); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(sentinel) != 1 {
		t.Fatalf("expected 1 sentinel event, got %d", len(sentinel))
	}
}
