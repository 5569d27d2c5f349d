package alertrules

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/traceops/backend/internal/models"
)

const (
	TypeExportTooLarge = "EXPORT_TOO_LARGE"
	TypeActionFailed   = "ACTION_FAILED"

	DefaultLargeExportRows = 1000
)

// LargeExportRule fires for EXPORT_DATA events whose metadata reports more
// than Threshold exported rows.
type LargeExportRule struct {
	Threshold int64
}

func (LargeExportRule) Type() string { return TypeExportTooLarge }

func (r LargeExportRule) Evaluate(ev *models.AuditEvent) (Finding, bool) {
	if !strings.EqualFold(ev.Action, models.ActionExportData) {
		return Finding{}, false
	}

	rows, ok := metadataInt(ev.Metadata, "rows")
	if !ok || rows <= r.Threshold {
		return Finding{}, false
	}

	target := ev.Resource
	if ev.ResourceID != nil {
		target += ":" + *ev.ResourceID
	}

	return Finding{
		Severity: models.SeverityHigh,
		Title:    "Large export detected",
		Details:  fmt.Sprintf("Exported %d rows from %s", rows, target),
	}, true
}

// FailedActionRule fires for any event with a non-blank result other than SUCCESS.
type FailedActionRule struct{}

func (FailedActionRule) Type() string { return TypeActionFailed }

func (FailedActionRule) Evaluate(ev *models.AuditEvent) (Finding, bool) {
	if ev.Result == nil || strings.TrimSpace(*ev.Result) == "" {
		return Finding{}, false
	}
	if strings.EqualFold(*ev.Result, models.ResultSuccess) {
		return Finding{}, false
	}

	return Finding{
		Severity: models.SeverityMedium,
		Title:    "Action failed",
		Details:  fmt.Sprintf("%s on %s failed (result=%s)", ev.Action, ev.Resource, *ev.Result),
	}, true
}

// metadataInt reads an integral number stored under key in a JSON object.
// The value must be written as a plain integer literal that fits in int64;
// anything else (no document, not an object, missing key, string, fraction,
// exponent, out of range) reports ok=false.
func metadataInt(raw []byte, key string) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return 0, false
	}

	n, ok := obj[key].(json.Number)
	if !ok {
		return 0, false
	}
	v, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return v, true
}
