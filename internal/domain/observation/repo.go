package observation

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an observation does not exist in the caller's
// tenant scope.
var ErrNotFound = errors.New("observation not found")

type Repository interface {
	Create(ctx context.Context, o *Observation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Observation, error)
	// ListByResidentAndCategory returns non-deleted observations for one
	// resident and category whose civil date lies in [dateFrom, dateTo],
	// ordered by civil date then time of day. Civil dates are the storage
	// representation; precise instant filtering is the aggregator's job.
	ListByResidentAndCategory(ctx context.Context, residentID uuid.UUID, category Category, dateFrom, dateTo string) ([]*Observation, error)
}
