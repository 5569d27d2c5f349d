package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/traceops/backend/internal/http/dto"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/repositories"
	"github.com/traceops/backend/internal/services"
	"go.uber.org/zap"
)

type EventIngester interface {
	IngestOne(ctx context.Context, tenantID uuid.UUID, in models.EventInput) (uuid.UUID, error)
	IngestBatch(ctx context.Context, tenantID uuid.UUID, items []models.EventInput) (int, error)
}

type EventReader interface {
	List(ctx context.Context, tenantID uuid.UUID, f repositories.EventFilter) (services.Page[models.AuditEvent], error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.AuditEvent, error)
}

type EventHandler struct {
	ingest EventIngester
	events EventReader
	log    *zap.Logger
}

func NewEventHandler(ingest EventIngester, events EventReader, log *zap.Logger) *EventHandler {
	return &EventHandler{ingest: ingest, events: events, log: log}
}

// Ingest stores one event for the API key's tenant.
func (h *EventHandler) Ingest(c *fiber.Ctx) error {
	var req dto.IngestEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	id, err := h.ingest.IngestOne(c.UserContext(), mustCaller(c).TenantID, req.ToInput())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.IDResponse{ID: id}})
}

// IngestBatch takes a JSON array of events.
func (h *EventHandler) IngestBatch(c *fiber.Ctx) error {
	var req []dto.IngestEventRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	items := make([]models.EventInput, len(req))
	for i := range req {
		items[i] = req[i].ToInput()
	}

	n, err := h.ingest.IngestBatch(c.UserContext(), mustCaller(c).TenantID, items)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.InsertedResponse{Inserted: n}})
}

func (h *EventHandler) List(c *fiber.Ctx) error {
	f, ok := eventFilter(c)
	if !ok {
		return badRequest(c, "from/to must be RFC 3339 timestamps")
	}
	f.ResourceID = c.Query("resource_id")
	f.Result = c.Query("result")
	f.IP = c.Query("ip")
	f.Limit, f.Offset = pageParams(c)

	page, err := h.events.List(c.UserContext(), mustCaller(c).TenantID, f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list(page))
}

func (h *EventHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid event id")
	}

	ev, err := h.events.Get(c.UserContext(), mustCaller(c).TenantID, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: ev})
}

// eventFilter reads the filters shared by the event list and the CSV export.
func eventFilter(c *fiber.Ctx) (repositories.EventFilter, bool) {
	from, ok1 := timeQuery(c, "from")
	to, ok2 := timeQuery(c, "to")
	return repositories.EventFilter{
		From:     from,
		To:       to,
		Actor:    c.Query("actor"),
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
		Query:    c.Query("q"),
	}, ok1 && ok2
}
