package observation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/viverecare/vivere/pkg/civiltime"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, o *Observation) error {
	if o.ResidentID == uuid.Nil {
		return fmt.Errorf("resident_id is required")
	}
	if !ValidCategory(o.Category) {
		return fmt.Errorf("invalid observation category: %s", o.Category)
	}
	if !civiltime.ValidDate(o.Date) {
		return fmt.Errorf("invalid civil date: %s", o.Date)
	}
	if o.Time != nil && !civiltime.ValidTime(*o.Time) {
		return fmt.Errorf("invalid civil time: %s", *o.Time)
	}
	if o.Payload == nil {
		o.Payload = map[string]interface{}{}
	}
	return s.repo.Create(ctx, o)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Observation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByResidentAndCategory(ctx context.Context, residentID uuid.UUID, category Category, dateFrom, dateTo string) ([]*Observation, error) {
	return s.repo.ListByResidentAndCategory(ctx, residentID, category, dateFrom, dateTo)
}
