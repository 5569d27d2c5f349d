package events

import "context"

// Event types
const (
	EventAlertRaised   = "alert_raised"
	EventAlertResolved = "alert_resolved"
)

// StreamAlerts carries alert lifecycle events for the live feed.
const StreamAlerts = "events:alerts"

type Event struct {
	Type     string         `json:"type"`
	TenantID string         `json:"tenant_id"`
	Payload  map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}

// NopPublisher drops everything. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Event) error { return nil }
