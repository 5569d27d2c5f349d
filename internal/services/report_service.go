package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/traceops/backend/internal/metrics"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/render"
	"github.com/traceops/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	MaxReportRange  = 120 * 24 * time.Hour
	SummaryTopN     = 6
	AuditPackTopN   = 8
	fileStampLayout = "20060102-1504"
	defaultTenant   = "Tenant"
)

// Renderer produces the audit pack artifact. *render.PDFRenderer implements it.
type Renderer interface {
	Render(d models.AuditPackData) ([]byte, error)
	ContentType() string
}

type ReportService struct {
	summaries SummaryStore
	runs      ReportRunStore
	tenants   TenantStore
	events    EventStore
	renderer  Renderer
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewReportService(
	summaries SummaryStore,
	runs ReportRunStore,
	tenants TenantStore,
	eventStore EventStore,
	renderer Renderer,
	m *metrics.Metrics,
	log *zap.Logger,
) *ReportService {
	return &ReportService{
		summaries: summaries,
		runs:      runs,
		tenants:   tenants,
		events:    eventStore,
		renderer:  renderer,
		metrics:   m,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ValidateRange enforces from <= to and a span of at most MaxReportRange.
func ValidateRange(from, to time.Time) error {
	if to.Before(from) {
		return invalid("invalid range")
	}
	if to.Sub(from) > MaxReportRange {
		return invalid("range too large (max 120 days)")
	}
	return nil
}

func (s *ReportService) Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.Summary, error) {
	if err := ValidateRange(from, to); err != nil {
		return nil, err
	}
	sum, err := s.summaries.Summarize(ctx, tenantID, from, to, SummaryTopN)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize events: %w", err)
	}
	return sum, nil
}

// CreateAuditPack renders the range summary and stores it as a report run.
func (s *ReportService) CreateAuditPack(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.ReportRun, error) {
	if err := ValidateRange(from, to); err != nil {
		return nil, err
	}

	tenantName := defaultTenant
	t, err := s.tenants.GetByID(ctx, tenantID)
	switch {
	case err == nil:
		if strings.TrimSpace(t.Name) != "" {
			tenantName = t.Name
		}
	case errors.Is(err, repositories.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	sum, err := s.summaries.Summarize(ctx, tenantID, from, to, AuditPackTopN)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize events: %w", err)
	}

	now := s.now()
	data, err := s.renderer.Render(models.AuditPackData{
		TenantName:  tenantName,
		From:        from,
		To:          to,
		Totals:      sum.Totals,
		TopActions:  sum.TopActions,
		TopActors:   sum.TopActors,
		GeneratedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render audit pack: %w", err)
	}

	run := &models.ReportRun{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Type:        models.ReportTypeAuditPack,
		From:        from,
		To:          to,
		CreatedAt:   now,
		FileName:    "traceops-audit-pack-" + now.Format(fileStampLayout) + ".pdf",
		ContentType: s.renderer.ContentType(),
		Data:        data,
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to store report run: %w", err)
	}
	s.metrics.ReportGenerated()

	s.log.Info("audit pack generated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("report_id", run.ID.String()),
		zap.Int("bytes", len(data)),
	)
	return run, nil
}

func (s *ReportService) ListRuns(ctx context.Context, tenantID uuid.UUID, limit, offset int) (Page[models.ReportRun], error) {
	limit, offset = ClampPage(limit, offset, DefaultRunsLimit)
	items, total, err := s.runs.List(ctx, tenantID, limit, offset)
	if err != nil {
		return Page[models.ReportRun]{}, err
	}
	return Page[models.ReportRun]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// DownloadRun returns the run with its bytes, or ErrNotFound.
func (s *ReportService) DownloadRun(ctx context.Context, tenantID, id uuid.UUID) (*models.ReportRun, error) {
	run, err := s.runs.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fromRepo(err)
	}
	return run, nil
}

// ExportEventsCSV writes every matching event newest first. At least one range
// bound is required so an accidental all-time export is refused.
func (s *ReportService) ExportEventsCSV(ctx context.Context, tenantID uuid.UUID, f repositories.EventFilter) (*models.FileExport, error) {
	if f.From == nil && f.To == nil {
		return nil, invalid("please provide from/to date range")
	}

	var buf bytes.Buffer
	w, err := render.NewEventCSVWriter(&buf)
	if err != nil {
		return nil, err
	}
	if err := s.events.Stream(ctx, tenantID, f, w.Write); err != nil {
		return nil, fmt.Errorf("failed to export events: %w", err)
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("failed to export events: %w", err)
	}

	return &models.FileExport{
		FileName:    "traceops-events-" + s.now().Format(fileStampLayout) + ".csv",
		ContentType: models.ContentTypeCSV,
		Data:        buf.Bytes(),
	}, nil
}
