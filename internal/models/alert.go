package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	SeverityLow    = "LOW"
	SeverityMedium = "MEDIUM"
	SeverityHigh   = "HIGH"
)

func IsValidSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

type Alert struct {
	ID         uuid.UUID  `json:"id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	EventID    *uuid.UUID `json:"event_id,omitempty"`
	Type       string     `json:"type"`
	Severity   string     `json:"severity"`
	Title      string     `json:"title"`
	Details    *string    `json:"details,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	IsResolved bool       `json:"is_resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// AlertInput is a manually raised alert.
type AlertInput struct {
	EventID  *uuid.UUID
	Type     string
	Severity string
	Title    string
	Details  *string
}
