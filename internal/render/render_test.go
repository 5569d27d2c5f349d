package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traceops/backend/internal/models"
)

func strPtr(s string) *string { return &s }

func TestEventCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewEventCSVWriter(&buf)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, w.Write(&models.AuditEvent{
		ID:         uuid.New(),
		OccurredAt: at,
		Actor:      "alice@example.com",
		Action:     "EXPORT_DATA",
		Resource:   "reports, monthly",
		ResourceID: strPtr(`r"1`),
		Result:     strPtr("SUCCESS"),
	}))
	require.NoError(t, w.Write(&models.AuditEvent{
		ID:         uuid.New(),
		OccurredAt: at,
		Actor:      "bob",
		Action:     "LOGIN",
		Resource:   "session",
	}))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "occurredAt,actor,action,resource,resourceId,ip,result", lines[0])
	assert.Equal(t, `2026-03-01T12:30:00Z,alice@example.com,EXPORT_DATA,"reports, monthly","r""1",,SUCCESS`, lines[1])
	assert.Equal(t, "2026-03-01T12:30:00Z,bob,LOGIN,session,,,", lines[2])
}

func TestPDFRenderer(t *testing.T) {
	r := NewPDFRenderer()
	assert.Equal(t, "application/pdf", r.ContentType())

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	data := models.AuditPackData{
		TenantName:  "Acme Ünïcode",
		From:        from,
		To:          from.Add(30 * 24 * time.Hour),
		Totals:      models.SummaryTotals{Events: 10, Success: 7, Failed: 2, Exports: 1},
		TopActions:  []models.KeyCount{{Key: "LOGIN", Count: 6}, {Key: "EXPORT_DATA", Count: 4}},
		TopActors:   nil,
		GeneratedAt: from.Add(31 * 24 * time.Hour),
	}

	out, err := r.Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Greater(t, len(out), 500)
}

func TestPDFText(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"ascii", "Acme Corp", "Acme Corp"},
		{"cp1252", "Zoë • café", "Zo\xeb \x95 caf\xe9"},
		{"marks dropped", "Łódź Őrség", "?\xf3dz Ors\xe9g"},
		{"cyrillic", "Акме", "????"},
		{"cjk", "株式会社", "????"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, pdfText(tc.in))
		})
	}
}

func TestPDFRenderer_NonLatinTenant(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out, err := NewPDFRenderer().Render(models.AuditPackData{
		TenantName:  "ООО Ромашка 株式会社",
		From:        from,
		To:          from.Add(24 * time.Hour),
		Totals:      models.SummaryTotals{Events: 1, Success: 1},
		TopActors:   []models.KeyCount{{Key: "иван@пример.рф", Count: 1}},
		GeneratedAt: from.Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
