package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/traceops/backend/internal/auth"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/rbac"
	"github.com/traceops/backend/internal/services"
	"go.uber.org/zap"
)

const (
	CtxCaller    = "caller"
	HeaderAPIKey = "X-API-Key"
)

// Caller is the authenticated principal of a request. Exactly one of UserID
// and APIKeyID is set.
type Caller struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	APIKeyID uuid.UUID
	Role     string
	Email    string
}

func (c Caller) IsMachine() bool {
	return c.APIKeyID != uuid.Nil
}

// JWTMiddleware accepts "Authorization: Bearer <jwt>".
func JWTMiddleware(tokens auth.TokenIssuer, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxCaller, Caller{
			TenantID: claims.TenantID,
			UserID:   claims.UserID,
			Role:     rbac.NormalizeRole(claims.Role),
			Email:    claims.Email,
		})
		return c.Next()
	}
}

type APIKeyAuthenticator interface {
	AuthenticateAPIKey(ctx context.Context, rawKey string) (*models.APIKey, error)
}

// APIKeyMiddleware resolves X-API-Key to its tenant. Missing, unknown and
// revoked keys are all 401.
func APIKeyMiddleware(authn APIKeyAuthenticator, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(HeaderAPIKey))
		if raw == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing api key"})
		}

		key, err := authn.AuthenticateAPIKey(c.UserContext(), raw)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCredentials) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid api key"})
			}
			log.Error("api key lookup failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		}

		c.Locals(CtxCaller, Caller{TenantID: key.TenantID, APIKeyID: key.ID})
		return c.Next()
	}
}

func GetCaller(c *fiber.Ctx) (Caller, bool) {
	caller, ok := c.Locals(CtxCaller).(Caller)
	return caller, ok
}

// RequirePermission gates a route on the caller's role.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := GetCaller(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthenticated"})
		}
		if caller.IsMachine() || !rbac.HasPermission(caller.Role, permission) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient role"})
		}
		return c.Next()
	}
}
