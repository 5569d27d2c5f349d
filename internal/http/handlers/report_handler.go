package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/traceops/backend/internal/http/dto"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/repositories"
	"github.com/traceops/backend/internal/services"
	"go.uber.org/zap"
)

type Reporter interface {
	Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.Summary, error)
	CreateAuditPack(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.ReportRun, error)
	ListRuns(ctx context.Context, tenantID uuid.UUID, limit, offset int) (services.Page[models.ReportRun], error)
	DownloadRun(ctx context.Context, tenantID, id uuid.UUID) (*models.ReportRun, error)
	ExportEventsCSV(ctx context.Context, tenantID uuid.UUID, f repositories.EventFilter) (*models.FileExport, error)
}

type ReportHandler struct {
	reports Reporter
	log     *zap.Logger
}

func NewReportHandler(reports Reporter, log *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, log: log}
}

func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	from, ok1 := timeQuery(c, "from")
	to, ok2 := timeQuery(c, "to")
	if !ok1 || !ok2 || from == nil || to == nil {
		return badRequest(c, "from and to are required RFC 3339 timestamps")
	}

	s, err := h.reports.Summarize(c.UserContext(), mustCaller(c).TenantID, *from, *to)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: s})
}

func (h *ReportHandler) ExportEventsCSV(c *fiber.Ctx) error {
	f, ok := eventFilter(c)
	if !ok {
		return badRequest(c, "from/to must be RFC 3339 timestamps")
	}

	out, err := h.reports.ExportEventsCSV(c.UserContext(), mustCaller(c).TenantID, f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return sendFile(c, out.FileName, out.ContentType, out.Data)
}

func (h *ReportHandler) CreateAuditPack(c *fiber.Ctx) error {
	var req dto.AuditPackRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	run, err := h.reports.CreateAuditPack(c.UserContext(), mustCaller(c).TenantID, req.From, req.To)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: run})
}

func (h *ReportHandler) ListRuns(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	page, err := h.reports.ListRuns(c.UserContext(), mustCaller(c).TenantID, limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list(page))
}

func (h *ReportHandler) DownloadRun(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid report id")
	}

	run, err := h.reports.DownloadRun(c.UserContext(), mustCaller(c).TenantID, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return sendFile(c, run.FileName, run.ContentType, run.Data)
}

func sendFile(c *fiber.Ctx, name, contentType string, data []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(data)
}
