package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/traceops/backend/internal/alertrules"
	"github.com/traceops/backend/internal/events"
	"github.com/traceops/backend/internal/metrics"
	"github.com/traceops/backend/internal/models"
	"go.uber.org/zap"
)

// MaxBatchSize is the largest batch accepted by IngestBatch.
const MaxBatchSize = 1000

const (
	ingestModeSingle = "single"
	ingestModeBatch  = "batch"
)

// WebhookSender delivers post-commit notifications. *WebhookClient implements it.
type WebhookSender interface {
	Enabled() bool
	Send(ctx context.Context, payload any) error
}

type IngestService struct {
	events    EventStore
	engine    *alertrules.Engine
	webhook   WebhookSender
	publisher events.Publisher
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewIngestService(
	eventStore EventStore,
	engine *alertrules.Engine,
	webhook WebhookSender,
	publisher events.Publisher,
	m *metrics.Metrics,
	log *zap.Logger,
) *IngestService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &IngestService{
		events:    eventStore,
		engine:    engine,
		webhook:   webhook,
		publisher: publisher,
		metrics:   m,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// IngestOne stores a single event and its alerts atomically.
func (s *IngestService) IngestOne(ctx context.Context, tenantID uuid.UUID, in models.EventInput) (uuid.UUID, error) {
	ev, err := s.stage(tenantID, in, s.now())
	if err != nil {
		return uuid.Nil, err
	}
	alerts := s.engine.Evaluate(&ev)

	if err := s.events.InsertWithAlerts(ctx, []models.AuditEvent{ev}, alerts); err != nil {
		return uuid.Nil, fmt.Errorf("failed to store event: %w", err)
	}
	s.committed(ingestModeSingle, 1, alerts)

	s.notify(ctx, tenantID, newEventWebhookPayload(&ev))
	s.publishAlerts(ctx, alerts)

	return ev.ID, nil
}

// IngestBatch stores every item or none. An empty batch is a no-op.
func (s *IngestService) IngestBatch(ctx context.Context, tenantID uuid.UUID, items []models.EventInput) (int, error) {
	if len(items) > MaxBatchSize {
		return 0, invalid("batch limit is %d", MaxBatchSize)
	}
	if len(items) == 0 {
		return 0, nil
	}

	now := s.now()
	staged := make([]models.AuditEvent, 0, len(items))
	var alerts []models.Alert
	for i, in := range items {
		ev, err := s.stage(tenantID, in, now)
		if err != nil {
			return 0, invalid("item %d: %s", i, err.Error())
		}
		staged = append(staged, ev)
	}
	for i := range staged {
		alerts = append(alerts, s.engine.Evaluate(&staged[i])...)
	}

	if err := s.events.InsertWithAlerts(ctx, staged, alerts); err != nil {
		return 0, fmt.Errorf("failed to store batch: %w", err)
	}
	s.committed(ingestModeBatch, len(staged), alerts)

	payload := BatchWebhookPayload{TenantID: tenantID, Events: make([]EventWebhookPayload, len(staged))}
	for i := range staged {
		payload.Events[i] = newEventWebhookPayload(&staged[i])
	}
	s.notify(ctx, tenantID, payload)
	s.publishAlerts(ctx, alerts)

	return len(staged), nil
}

// stage validates in and turns it into a storable event.
func (s *IngestService) stage(tenantID uuid.UUID, in models.EventInput, now time.Time) (models.AuditEvent, error) {
	if strings.TrimSpace(in.Actor) == "" || strings.TrimSpace(in.Action) == "" || strings.TrimSpace(in.Resource) == "" {
		return models.AuditEvent{}, invalid("actor, action and resource are required")
	}

	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = now
	}

	metadata := in.Metadata
	if len(bytes.TrimSpace(metadata)) == 0 || string(bytes.TrimSpace(metadata)) == "null" {
		metadata = nil
	}

	return models.AuditEvent{
		ID:         uuid.New(),
		TenantID:   tenantID,
		OccurredAt: occurredAt.UTC(),
		Actor:      in.Actor,
		Action:     in.Action,
		Resource:   in.Resource,
		ResourceID: in.ResourceID,
		IP:         in.IP,
		Result:     in.Result,
		Metadata:   metadata,
	}, nil
}

func (s *IngestService) committed(mode string, n int, alerts []models.Alert) {
	s.metrics.EventsCommitted(mode, n)
	for _, a := range alerts {
		s.metrics.AlertCommitted(a.Type)
	}
}

// notify sends exactly one webhook per call. Failures never reach the caller.
func (s *IngestService) notify(ctx context.Context, tenantID uuid.UUID, payload any) {
	if s.webhook == nil || !s.webhook.Enabled() {
		return
	}
	if err := s.webhook.Send(ctx, payload); err != nil {
		s.metrics.WebhookFailed()
		s.log.Warn("ingestion webhook failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	}
}

func (s *IngestService) publishAlerts(ctx context.Context, alerts []models.Alert) {
	for i := range alerts {
		publishAlert(ctx, s.publisher, s.log, events.EventAlertRaised, &alerts[i])
	}
}

// publishAlert pushes an alert lifecycle event to the live feed. Best-effort.
func publishAlert(ctx context.Context, pub events.Publisher, log *zap.Logger, eventType string, a *models.Alert) {
	payload := map[string]any{
		"id":          a.ID.String(),
		"type":        a.Type,
		"severity":    a.Severity,
		"title":       a.Title,
		"created_at":  a.CreatedAt,
		"is_resolved": a.IsResolved,
	}
	if a.EventID != nil {
		payload["event_id"] = a.EventID.String()
	}
	if a.Details != nil {
		payload["details"] = *a.Details
	}
	if a.ResolvedAt != nil {
		payload["resolved_at"] = *a.ResolvedAt
	}

	err := pub.Publish(ctx, events.StreamAlerts, events.Event{
		Type:     eventType,
		TenantID: a.TenantID.String(),
		Payload:  payload,
	})
	if err != nil {
		log.Warn("failed to publish alert event",
			zap.String("type", eventType),
			zap.String("alert_id", a.ID.String()),
			zap.Error(err),
		)
	}
}
