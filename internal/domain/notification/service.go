package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log.With().Str("component", "notification_service").Logger()}
}

func (s *Service) validate(n *Notification) error {
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	if n.Severity == "" {
		return fmt.Errorf("severity is required")
	}
	if n.Category == "" {
		return fmt.Errorf("category is required")
	}
	return nil
}

// Broadcast creates a notification visible to every active user of the
// tenant in context.
func (s *Service) Broadcast(ctx context.Context, tenantID string, n *Notification) error {
	if err := s.validate(n); err != nil {
		return err
	}
	n.Recipients = nil
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create broadcast notification: %w", err)
	}
	s.log.Info().
		Str("tenant_id", tenantID).
		Str("notification_id", n.ID.String()).
		Str("type", n.Type).
		Str("severity", string(n.Severity)).
		Msg("broadcast notification created")
	return nil
}

// Directed creates a notification scoped to the given recipients. An empty
// recipient list degrades to broadcast.
func (s *Service) Directed(ctx context.Context, tenantID string, recipients []uuid.UUID, n *Notification) error {
	if len(recipients) == 0 {
		return s.Broadcast(ctx, tenantID, n)
	}
	if err := s.validate(n); err != nil {
		return err
	}
	n.Recipients = recipients
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create directed notification: %w", err)
	}
	s.log.Info().
		Str("tenant_id", tenantID).
		Str("notification_id", n.ID.String()).
		Str("type", n.Type).
		Int("recipients", len(recipients)).
		Msg("directed notification created")
	return nil
}

// BroadcastOnce creates the notification only if no notification of the same
// type exists for the same entity yet. Returns the surviving notification and
// whether this call created it.
func (s *Service) BroadcastOnce(ctx context.Context, tenantID string, n *Notification) (*Notification, bool, error) {
	if n.EntityType == "" || n.EntityID == nil {
		return nil, false, fmt.Errorf("entity reference is required for idempotent notifications")
	}
	existing, err := s.repo.FindByEntityAndType(ctx, n.EntityType, *n.EntityID, n.Type)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, fmt.Errorf("lookup existing notification: %w", err)
	}
	if err := s.Broadcast(ctx, tenantID, n); err != nil {
		return nil, false, err
	}
	return n, true, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit int) ([]*Notification, error) {
	return s.repo.List(ctx, limit)
}
