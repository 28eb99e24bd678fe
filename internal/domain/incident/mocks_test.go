package incident

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/viverecare/vivere/internal/domain/notification"
	"github.com/viverecare/vivere/internal/domain/observation"
)

// -- observation store mock --

type obsStore struct {
	records []*observation.Observation
}

func (s *obsStore) Create(_ context.Context, o *observation.Observation) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	s.records = append(s.records, o)
	return nil
}

func (s *obsStore) GetByID(_ context.Context, id uuid.UUID) (*observation.Observation, error) {
	for _, o := range s.records {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, observation.ErrNotFound
}

func (s *obsStore) ListByResidentAndCategory(_ context.Context, residentID uuid.UUID, category observation.Category, dateFrom, dateTo string) ([]*observation.Observation, error) {
	var result []*observation.Observation
	for _, o := range s.records {
		if o.ResidentID == residentID && o.Category == category && o.Date >= dateFrom && o.Date <= dateTo {
			result = append(result, o)
		}
	}
	return result, nil
}

type fixedTimezone string

func (z fixedTimezone) Timezone(_ context.Context, _ string) (string, error) {
	return string(z), nil
}

func newObs(residentID uuid.UUID, category observation.Category, date, tod string, payload map[string]interface{}) *observation.Observation {
	o := &observation.Observation{
		ID:         uuid.New(),
		ResidentID: residentID,
		Category:   category,
		Date:       date,
		Payload:    payload,
		RecordedBy: "Enf. Paula",
	}
	if tod != "" {
		o.Time = &tod
	}
	return o
}

// -- incident repository mock --

type incRepo struct {
	records   []*Incident
	createErr error
}

func (r *incRepo) Create(_ context.Context, inc *Incident) error {
	if r.createErr != nil {
		return r.createErr
	}
	if inc.ID == uuid.Nil {
		inc.ID = uuid.New()
	}
	inc.CreatedAt = time.Now()
	r.records = append(r.records, inc)
	return nil
}

func (r *incRepo) GetByID(_ context.Context, id uuid.UUID) (*Incident, error) {
	for _, inc := range r.records {
		if inc.ID == id {
			return inc, nil
		}
	}
	return nil, ErrNotFound
}

func (r *incRepo) ListByResident(_ context.Context, residentID uuid.UUID, dateFrom, dateTo string) ([]*Incident, error) {
	var result []*Incident
	for _, inc := range r.records {
		if inc.ResidentID == residentID && inc.Date >= dateFrom && inc.Date <= dateTo {
			result = append(result, inc)
		}
	}
	return result, nil
}

func (r *incRepo) ListByResidentAndKind(_ context.Context, residentID uuid.UUID, category Category, subtype Subtype, dateFrom, dateTo string) ([]*Incident, error) {
	var result []*Incident
	for _, inc := range r.records {
		if inc.ResidentID == residentID && inc.Category == category && inc.Subtype == subtype &&
			inc.Date >= dateFrom && inc.Date <= dateTo {
			result = append(result, inc)
		}
	}
	return result, nil
}

func (r *incRepo) ExistsOnDate(_ context.Context, residentID uuid.UUID, category Category, subtype Subtype, civilDate string) (bool, error) {
	for _, inc := range r.records {
		if inc.ResidentID == residentID && inc.Category == category && inc.Subtype == subtype && inc.Date == civilDate {
			return true, nil
		}
	}
	return false, nil
}

func (r *incRepo) ExistsForSource(_ context.Context, residentID uuid.UUID, category Category, subtype Subtype, sourceObservationID uuid.UUID) (bool, error) {
	for _, inc := range r.records {
		if inc.ResidentID == residentID && inc.Category == category && inc.Subtype == subtype &&
			inc.SourceObservationID != nil && *inc.SourceObservationID == sourceObservationID {
			return true, nil
		}
	}
	return false, nil
}

func (r *incRepo) bySubtype(subtype Subtype) []*Incident {
	var result []*Incident
	for _, inc := range r.records {
		if inc.Subtype == subtype {
			result = append(result, inc)
		}
	}
	return result
}

// -- notification repository mock --

type notifRepo struct {
	records []*notification.Notification
}

func (r *notifRepo) Create(_ context.Context, n *notification.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	r.records = append(r.records, n)
	return nil
}

func (r *notifRepo) GetByID(_ context.Context, id uuid.UUID) (*notification.Notification, error) {
	for _, n := range r.records {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, notification.ErrNotFound
}

func (r *notifRepo) FindByEntityAndType(_ context.Context, entityType string, entityID uuid.UUID, notifType string) (*notification.Notification, error) {
	for _, n := range r.records {
		if n.EntityType == entityType && n.EntityID != nil && *n.EntityID == entityID && n.Type == notifType {
			return n, nil
		}
	}
	return nil, notification.ErrNotFound
}

func (r *notifRepo) List(_ context.Context, _ int) ([]*notification.Notification, error) {
	return r.records, nil
}

type stubResolver struct {
	ids []uuid.UUID
	err error
}

func (s *stubResolver) GetIncidentRecipients(_ context.Context, _ string, _ string) ([]uuid.UUID, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}

var errStore = fmt.Errorf("store unavailable")
