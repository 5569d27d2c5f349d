package handlers

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/traceops/backend/internal/http/dto"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/services"
	"go.uber.org/zap"
)

type AlertManager interface {
	List(ctx context.Context, tenantID uuid.UUID, resolved *bool, limit, offset int) (services.Page[models.Alert], error)
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Alert, error)
	Create(ctx context.Context, tenantID uuid.UUID, in models.AlertInput) (*models.Alert, error)
	Resolve(ctx context.Context, tenantID, id uuid.UUID) (*models.Alert, error)
}

type AlertHandler struct {
	alerts AlertManager
	log    *zap.Logger
}

func NewAlertHandler(alerts AlertManager, log *zap.Logger) *AlertHandler {
	return &AlertHandler{alerts: alerts, log: log}
}

func (h *AlertHandler) List(c *fiber.Ctx) error {
	var resolved *bool
	if v := c.Query("resolved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return badRequest(c, "resolved must be true or false")
		}
		resolved = &b
	}
	limit, offset := pageParams(c)

	page, err := h.alerts.List(c.UserContext(), mustCaller(c).TenantID, resolved, limit, offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(list(page))
}

func (h *AlertHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid alert id")
	}

	a, err := h.alerts.Get(c.UserContext(), mustCaller(c).TenantID, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: a})
}

// Create serves both humans and automation. The tenant always comes from the
// authenticated caller, never from the body.
func (h *AlertHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateAlertRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	a, err := h.alerts.Create(c.UserContext(), mustCaller(c).TenantID, req.ToInput())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dto.IDResponse{ID: a.ID}})
}

func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "invalid alert id")
	}

	a, err := h.alerts.Resolve(c.UserContext(), mustCaller(c).TenantID, id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: a})
}
