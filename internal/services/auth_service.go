package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/traceops/backend/internal/auth"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/rbac"
	"github.com/traceops/backend/internal/repositories"
	"go.uber.org/zap"
)

type AuthService struct {
	users   UserStore
	tenants TenantStore
	apiKeys APIKeyStore
	tokens  auth.TokenIssuer
	log     *zap.Logger
	now     func() time.Time
}

func NewAuthService(
	users UserStore,
	tenants TenantStore,
	apiKeys APIKeyStore,
	tokens auth.TokenIssuer,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		tenants: tenants,
		apiKeys: apiKeys,
		tokens:  tokens,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	TenantID uuid.UUID
	Email    string
	Password string
	Role     string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, invalid("email and password are required")
	}
	role := rbac.NormalizeRole(in.Role)
	if !rbac.IsValidRole(role) {
		return nil, invalid("role must be ADMIN, AUDITOR or VIEWER")
	}

	if _, err := s.tenants.GetByID(ctx, in.TenantID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, invalid("tenant not found")
		}
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		ID:           uuid.New(),
		TenantID:     in.TenantID,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, invalid("user already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user registered",
		zap.String("tenant_id", u.TenantID.String()),
		zap.String("user_id", u.ID.String()),
		zap.String("role", u.Role),
	)
	return u, nil
}

// Login checks the password and issues a JWT. Unknown users and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, tenantID uuid.UUID, email, password string) (string, *models.User, error) {
	u, err := s.users.GetByEmail(ctx, tenantID, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.ID, u.TenantID, u.Role, u.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, u, nil
}

// AuthenticateAPIKey resolves a raw X-API-Key value to its active key record.
func (s *AuthService) AuthenticateAPIKey(ctx context.Context, rawKey string) (*models.APIKey, error) {
	rawKey = strings.TrimSpace(rawKey)
	if rawKey == "" {
		return nil, ErrInvalidCredentials
	}
	k, err := s.apiKeys.GetActiveByHash(ctx, auth.HashAPIKey(rawKey))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load api key: %w", err)
	}
	return k, nil
}

func (s *AuthService) Me(ctx context.Context, tenantID, userID uuid.UUID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, fromRepo(err)
	}
	return u, nil
}
