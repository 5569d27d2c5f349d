package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditEvent is an immutable record of an actor doing something to a resource.
type AuditEvent struct {
	ID         uuid.UUID       `json:"id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID *string         `json:"resource_id,omitempty"`
	IP         *string         `json:"ip,omitempty"`
	Result     *string         `json:"result,omitempty"` // SUCCESS, anything else is a failure
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

const (
	ResultSuccess    = "SUCCESS"
	ActionExportData = "EXPORT_DATA"
)

// EventInput is what a caller submits for ingestion.
type EventInput struct {
	OccurredAt time.Time // zero means "use ingestion time"
	Actor      string
	Action     string
	Resource   string
	ResourceID *string
	IP         *string
	Result     *string
	Metadata   json.RawMessage
}
