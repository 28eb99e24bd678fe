package sentinel

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("sentinel tracking not found")

// ListFilter narrows the operator listing. Nil fields are not applied.
type ListFilter struct {
	Status *Status
}

type Repository interface {
	Create(ctx context.Context, t *Tracking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tracking, error)
	GetByIncidentID(ctx context.Context, incidentID uuid.UUID) (*Tracking, error)
	Update(ctx context.Context, t *Tracking) error
	List(ctx context.Context, filter ListFilter) ([]*Tracking, error)
}
