package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportTypeAuditPack = "AUDIT_PACK"
	ContentTypePDF      = "application/pdf"
	ContentTypeCSV      = "text/csv; charset=utf-8"
)

// ReportRun is a generated report artifact. Data is only loaded for downloads.
type ReportRun struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Type        string    `json:"type"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	CreatedAt   time.Time `json:"created_at"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"-"`
}

type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type SummaryTotals struct {
	Events  int `json:"events"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Exports int `json:"exports"`
}

type Summary struct {
	From       time.Time     `json:"from"`
	To         time.Time     `json:"to"`
	Totals     SummaryTotals `json:"totals"`
	TopActions []KeyCount    `json:"top_actions"`
	TopActors  []KeyCount    `json:"top_actors"`
}

// AuditPackData is everything the audit pack renderer needs.
type AuditPackData struct {
	TenantName  string
	From        time.Time
	To          time.Time
	Totals      SummaryTotals
	TopActions  []KeyCount
	TopActors   []KeyCount
	GeneratedAt time.Time
}

// FileExport is a rendered file handed straight to the client.
type FileExport struct {
	FileName    string
	ContentType string
	Data        []byte
}
