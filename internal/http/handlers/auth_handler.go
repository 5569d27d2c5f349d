package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/traceops/backend/internal/http/dto"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/services"
	"go.uber.org/zap"
)

type Authenticator interface {
	Login(ctx context.Context, tenantID uuid.UUID, email, password string) (string, *models.User, error)
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Me(ctx context.Context, tenantID, userID uuid.UUID) (*models.User, error)
}

type AuthHandler struct {
	auth Authenticator
	log  *zap.Logger
}

func NewAuthHandler(auth Authenticator, log *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	tenantID := uuid.MustParse(req.TenantID)
	token, user, err := h.auth.Login(c.UserContext(), tenantID, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(dto.AuthResponse{Token: token, User: user})
}

// Register creates a user. Only mounted while bootstrap is allowed.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), services.RegisterInput{
		TenantID: uuid.MustParse(req.TenantID),
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: dto.IDResponse{ID: user.ID}})
}

func (h *AuthHandler) GetMe(c *fiber.Ctx) error {
	caller := mustCaller(c)
	user, err := h.auth.Me(c.UserContext(), caller.TenantID, caller.UserID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: user})
}
