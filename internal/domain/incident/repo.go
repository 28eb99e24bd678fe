package incident

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("incident not found")

// Repository is the persistence boundary for incidents. The civil date range
// on ListByResidentAndKind is a coarse pre-filter; precise instant matching is
// the deduplicator's job.
type Repository interface {
	Create(ctx context.Context, inc *Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*Incident, error)
	ListByResident(ctx context.Context, residentID uuid.UUID, dateFrom, dateTo string) ([]*Incident, error)
	ListByResidentAndKind(ctx context.Context, residentID uuid.UUID, category Category, subtype Subtype, dateFrom, dateTo string) ([]*Incident, error)
	ExistsOnDate(ctx context.Context, residentID uuid.UUID, category Category, subtype Subtype, civilDate string) (bool, error)
	ExistsForSource(ctx context.Context, residentID uuid.UUID, category Category, subtype Subtype, sourceObservationID uuid.UUID) (bool, error)
}
