package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/traceops/backend/internal/events"
	"github.com/traceops/backend/internal/metrics"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/repositories"
	"go.uber.org/zap"
)

type AlertService struct {
	alerts    AlertStore
	events    EventStore
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewAlertService(
	alertStore AlertStore,
	eventStore EventStore,
	publisher events.Publisher,
	m *metrics.Metrics,
	log *zap.Logger,
) *AlertService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AlertService{
		alerts:    alertStore,
		events:    eventStore,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *AlertService) List(ctx context.Context, tenantID uuid.UUID, resolved *bool, limit, offset int) (Page[models.Alert], error) {
	limit, offset = ClampPage(limit, offset, DefaultPageLimit)
	items, total, err := s.alerts.List(ctx, tenantID, repositories.AlertFilter{Resolved: resolved, Limit: limit, Offset: offset})
	if err != nil {
		return Page[models.Alert]{}, err
	}
	return Page[models.Alert]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *AlertService) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Alert, error) {
	a, err := s.alerts.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fromRepo(err)
	}
	return a, nil
}

// Create raises an alert by hand. A referenced event must belong to tenantID.
func (s *AlertService) Create(ctx context.Context, tenantID uuid.UUID, in models.AlertInput) (*models.Alert, error) {
	alertType := strings.TrimSpace(in.Type)
	title := strings.TrimSpace(in.Title)
	if alertType == "" || title == "" {
		return nil, invalid("type and title are required")
	}

	severity := strings.ToUpper(strings.TrimSpace(in.Severity))
	if severity == "" {
		severity = models.SeverityMedium
	}
	if !models.IsValidSeverity(severity) {
		return nil, invalid("severity must be LOW, MEDIUM or HIGH")
	}

	if in.EventID != nil {
		if _, err := s.events.GetByID(ctx, tenantID, *in.EventID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, invalid("event not found")
			}
			return nil, fmt.Errorf("failed to check event: %w", err)
		}
	}

	a := &models.Alert{
		ID:        uuid.New(),
		TenantID:  tenantID,
		EventID:   in.EventID,
		Type:      alertType,
		Severity:  severity,
		Title:     title,
		Details:   in.Details,
		CreatedAt: s.now(),
	}
	if err := s.alerts.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}
	s.metrics.AlertCommitted(a.Type)

	s.log.Info("alert created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("alert_id", a.ID.String()),
		zap.String("type", a.Type),
	)
	publishAlert(ctx, s.publisher, s.log, events.EventAlertRaised, a)
	return a, nil
}

// Resolve is idempotent: resolving twice keeps the first resolution time.
func (s *AlertService) Resolve(ctx context.Context, tenantID, id uuid.UUID) (*models.Alert, error) {
	a, changed, err := s.alerts.Resolve(ctx, tenantID, id, s.now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}
	if changed {
		publishAlert(ctx, s.publisher, s.log, events.EventAlertResolved, a)
	}
	return a, nil
}
