package render

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/traceops/backend/internal/models"
)

var eventCSVHeader = []string{"occurredAt", "actor", "action", "resource", "resourceId", "ip", "result"}

// EventCSVWriter streams audit events as CSV rows. The header is written on creation.
type EventCSVWriter struct {
	w *csv.Writer
}

func NewEventCSVWriter(w io.Writer) (*EventCSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(eventCSVHeader); err != nil {
		return nil, err
	}
	return &EventCSVWriter{w: cw}, nil
}

func (c *EventCSVWriter) Write(e *models.AuditEvent) error {
	return c.w.Write([]string{
		e.OccurredAt.UTC().Format(time.RFC3339Nano),
		e.Actor,
		e.Action,
		e.Resource,
		deref(e.ResourceID),
		deref(e.IP),
		deref(e.Result),
	})
}

// Flush writes buffered rows and reports any write error seen so far.
func (c *EventCSVWriter) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
