package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notification not found")

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// FindByEntityAndType locates an existing notification for an entity,
	// used to keep entity-scoped notifications idempotent.
	FindByEntityAndType(ctx context.Context, entityType string, entityID uuid.UUID, notifType string) (*Notification, error)
	List(ctx context.Context, limit int) ([]*Notification, error)
}

// RecipientResolver resolves which users should receive directed incident
// notifications for a tenant.
type RecipientResolver interface {
	GetIncidentRecipients(ctx context.Context, tenantID string, triggeredByUserID string) ([]uuid.UUID, error)
}
