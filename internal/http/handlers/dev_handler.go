package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/traceops/backend/internal/http/dto"
	"github.com/traceops/backend/internal/models"
	"go.uber.org/zap"
)

type TenantAdmin interface {
	CreateTenant(ctx context.Context, name string) (*models.Tenant, error)
	ListTenants(ctx context.Context) ([]models.Tenant, error)
	CreateAPIKey(ctx context.Context, tenantID uuid.UUID, name string) (string, *models.APIKey, error)
}

// DevHandler serves the tenant/api-key bootstrap endpoints.
type DevHandler struct {
	tenants TenantAdmin
	log     *zap.Logger
}

func NewDevHandler(tenants TenantAdmin, log *zap.Logger) *DevHandler {
	return &DevHandler{tenants: tenants, log: log}
}

func (h *DevHandler) CreateTenant(c *fiber.Ctx) error {
	var req dto.CreateTenantRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	t, err := h.tenants.CreateTenant(c.UserContext(), req.Name)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: t})
}

func (h *DevHandler) ListTenants(c *fiber.Ctx) error {
	tenants, err := h.tenants.ListTenants(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: tenants})
}

func (h *DevHandler) CreateAPIKey(c *fiber.Ctx) error {
	var req dto.CreateAPIKeyRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	tenantID := uuid.MustParse(req.TenantID)
	raw, key, err := h.tenants.CreateAPIKey(c.UserContext(), tenantID, req.Name)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dto.APIKeyResponse{
		APIKey:   raw,
		Key:      *key,
		TenantID: tenantID,
	}})
}
