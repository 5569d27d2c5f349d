package dto

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/traceops/backend/internal/models"
)

type LoginRequest struct {
	TenantID string `json:"tenant_id" validate:"required,uuid"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	TenantID string `json:"tenant_id" validate:"required,uuid"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=ADMIN AUDITOR VIEWER admin auditor viewer"`
}

type CreateTenantRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type CreateAPIKeyRequest struct {
	TenantID string `json:"tenant_id" validate:"required,uuid"`
	Name     string `json:"name" validate:"max=200"`
}

// IngestEventRequest is one audit event as sent by a machine caller.
// Required-field checks live in the ingestion service so batch errors can name
// the offending item.
type IngestEventRequest struct {
	OccurredAt string          `json:"occurred_at"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	Resource   string          `json:"resource"`
	ResourceID *string         `json:"resource_id"`
	IP         *string         `json:"ip"`
	Result     *string         `json:"result"`
	Metadata   json.RawMessage `json:"metadata"`
}

// ToInput converts the request. An unparsable occurred_at is treated as absent.
func (r IngestEventRequest) ToInput() models.EventInput {
	return models.EventInput{
		OccurredAt: ParseTimestamp(r.OccurredAt),
		Actor:      r.Actor,
		Action:     r.Action,
		Resource:   r.Resource,
		ResourceID: r.ResourceID,
		IP:         r.IP,
		Result:     r.Result,
		Metadata:   r.Metadata,
	}
}

// ParseTimestamp accepts RFC 3339 with or without fractional seconds and
// returns the zero time for anything else.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type CreateAlertRequest struct {
	EventID  string  `json:"event_id" validate:"omitempty,uuid"`
	Type     string  `json:"type" validate:"required,max=100"`
	Severity string  `json:"severity" validate:"omitempty,max=20"`
	Title    string  `json:"title" validate:"required,max=300"`
	Details  *string `json:"details"`
}

func (r CreateAlertRequest) ToInput() models.AlertInput {
	in := models.AlertInput{
		Type:     r.Type,
		Severity: r.Severity,
		Title:    r.Title,
		Details:  r.Details,
	}
	if id, err := uuid.Parse(r.EventID); err == nil {
		in.EventID = &id
	}
	return in
}

type AuditPackRequest struct {
	From time.Time `json:"from" validate:"required"`
	To   time.Time `json:"to" validate:"required"`
}
