package incident

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/viverecare/vivere/internal/domain/observation"
)

func saoPaulo(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func windowCandidate(resident uuid.UUID, date, tod string, loc *time.Location) *Candidate {
	src := newObs(resident, observation.CategoryElimination, date, tod, stool("líquida"))
	instant, _ := time.ParseInLocation("2006-01-02 15:04", date+" "+tod, loc)
	return &Candidate{
		RuleID:      "elimination.diarrhea",
		Severity:    SeverityModerate,
		Category:    CategoryClinical,
		Subtype:     SubtypeAcuteDiarrhea,
		Disposition: DispositionIncident,
		Dedup:       DedupWindow,
		Window:      24 * time.Hour,
		Source:      src,
		Instant:     instant,
	}
}

func TestDedup_WindowScoped(t *testing.T) {
	loc := saoPaulo(t)
	repo := &incRepo{}
	dedup := NewDeduplicator(repo, testAggregator(&obsStore{}))
	resident := uuid.New()

	cand := windowCandidate(resident, "2025-06-10", "14:00", loc)
	exists, err := dedup.Exists(context.Background(), testTenant, cand)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Fatal("empty store must not report a duplicate")
	}

	// A prior incident of the same kind the evening before, inside the 24h
	// trailing window despite the different civil date.
	tod := "22:00"
	repo.records = append(repo.records, &Incident{
		ID:         uuid.New(),
		ResidentID: resident,
		Category:   CategoryClinical,
		Subtype:    SubtypeAcuteDiarrhea,
		Date:       "2025-06-09",
		Time:       &tod,
	})

	exists, err = dedup.Exists(context.Background(), testTenant, cand)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("incident inside the trailing window must count as duplicate")
	}

	// Outside the window, no duplicate.
	repo.records[0].Date = "2025-06-08"
	exists, err = dedup.Exists(context.Background(), testTenant, cand)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("incident outside the trailing window must not count")
	}
}

func TestDedup_WindowIgnoresOtherSubtypes(t *testing.T) {
	loc := saoPaulo(t)
	repo := &incRepo{}
	dedup := NewDeduplicator(repo, testAggregator(&obsStore{}))
	resident := uuid.New()

	tod := "13:00"
	repo.records = append(repo.records, &Incident{
		ID:         uuid.New(),
		ResidentID: resident,
		Category:   CategoryClinical,
		Subtype:    SubtypeDehydration,
		Date:       "2025-06-10",
		Time:       &tod,
	})

	cand := windowCandidate(resident, "2025-06-10", "14:00", loc)
	exists, err := dedup.Exists(context.Background(), testTenant, cand)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("a different subtype must not suppress the candidate")
	}
}

func TestDedup_CalendarDay(t *testing.T) {
	repo := &incRepo{}
	dedup := NewDeduplicator(repo, testAggregator(&obsStore{}))
	resident := uuid.New()

	src := newObs(resident, observation.CategoryElimination, "2025-06-10", "14:00", stool("líquida"))
	cand := &Candidate{
		Category:    CategoryClinical,
		Subtype:     SubtypeDehydration,
		Disposition: DispositionIncident,
		Dedup:       DedupCalendarDay,
		Source:      src,
	}

	exists, err := dedup.Exists(context.Background(), testTenant, cand)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Fatal("no incident on the date yet")
	}

	repo.records = append(repo.records, &Incident{
		ID:         uuid.New(),
		ResidentID: resident,
		Category:   CategoryClinical,
		Subtype:    SubtypeDehydration,
		Date:       "2025-06-10",
	})
	exists, err = dedup.Exists(context.Background(), testTenant, cand)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("same-day incident of the same kind must count as duplicate")
	}
}

func TestDedup_SourceScoped(t *testing.T) {
	repo := &incRepo{}
	dedup := NewDeduplicator(repo, testAggregator(&obsStore{}))
	resident := uuid.New()

	src := newObs(resident, observation.CategoryHygiene, "2025-06-10", "09:00",
		map[string]interface{}{"notes": "lesão sacral"})
	cand := &Candidate{
		Category:    CategoryClinical,
		Subtype:     SubtypePressureUlcer,
		Disposition: DispositionIncident,
		Dedup:       DedupSourceRecord,
		Source:      src,
	}

	exists, err := dedup.Exists(context.Background(), testTenant, cand)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Fatal("no incident references the source yet")
	}

	sourceID := src.ID
	repo.records = append(repo.records, &Incident{
		ID:                  uuid.New(),
		ResidentID:          resident,
		Category:            CategoryClinical,
		Subtype:             SubtypePressureUlcer,
		Date:                "2025-06-10",
		SourceObservationID: &sourceID,
	})
	exists, err = dedup.Exists(context.Background(), testTenant, cand)
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Error("incident referencing the same source must count as duplicate")
	}
}

func TestDedup_UnknownPolicy(t *testing.T) {
	dedup := NewDeduplicator(&incRepo{}, testAggregator(&obsStore{}))
	src := newObs(uuid.New(), observation.CategoryElimination, "2025-06-10", "14:00", nil)
	if _, err := dedup.Exists(context.Background(), testTenant, &Candidate{Dedup: "fuzzy", Source: src}); err == nil {
		t.Fatal("expected error for unknown dedup policy")
	}
}
