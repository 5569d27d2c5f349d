package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/traceops/backend/internal/alertrules"
	"github.com/traceops/backend/internal/http/dto"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/rbac"
)

// MetaHandler serves the fixed vocabularies the UI renders in filters and forms.
type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

type MetaOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type MetaRole struct {
	ID          string   `json:"id"`
	Permissions []string `json:"permissions"`
}

var severities = []MetaOption{
	{ID: models.SeverityLow, Label: "Low"},
	{ID: models.SeverityMedium, Label: "Medium"},
	{ID: models.SeverityHigh, Label: "High"},
}

var alertTypes = []MetaOption{
	{ID: alertrules.TypeExportTooLarge, Label: "Large export detected"},
	{ID: alertrules.TypeActionFailed, Label: "Action failed"},
}

func (h *MetaHandler) GetSeverities(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: severities})
}

func (h *MetaHandler) GetAlertTypes(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: alertTypes})
}

func (h *MetaHandler) GetRoles(c *fiber.Ctx) error {
	roles := make([]MetaRole, 0, len(rbac.AllRoles))
	for _, r := range rbac.AllRoles {
		roles = append(roles, MetaRole{ID: r, Permissions: rbac.RolePermissions[r]})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: roles})
}
