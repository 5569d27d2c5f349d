package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/repositories"
)

type EventService struct {
	events EventStore
}

func NewEventService(eventStore EventStore) *EventService {
	return &EventService{events: eventStore}
}

func (s *EventService) List(ctx context.Context, tenantID uuid.UUID, f repositories.EventFilter) (Page[models.AuditEvent], error) {
	f.Limit, f.Offset = ClampPage(f.Limit, f.Offset, DefaultPageLimit)
	items, total, err := s.events.List(ctx, tenantID, f)
	if err != nil {
		return Page[models.AuditEvent]{}, err
	}
	return Page[models.AuditEvent]{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// Get returns ErrNotFound for unknown ids and for ids owned by another tenant.
func (s *EventService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.AuditEvent, error) {
	ev, err := s.events.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fromRepo(err)
	}
	return ev, nil
}
