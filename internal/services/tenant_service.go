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
	"github.com/traceops/backend/internal/repositories"
	"go.uber.org/zap"
)

// TenantService backs the bootstrap endpoints and the admin CLI.
type TenantService struct {
	tenants TenantStore
	apiKeys APIKeyStore
	log     *zap.Logger
	now     func() time.Time
}

func NewTenantService(tenants TenantStore, apiKeys APIKeyStore, log *zap.Logger) *TenantService {
	return &TenantService{
		tenants: tenants,
		apiKeys: apiKeys,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *TenantService) CreateTenant(ctx context.Context, name string) (*models.Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name required")
	}
	t := &models.Tenant{ID: uuid.New(), Name: name, CreatedAt: s.now()}
	if err := s.tenants.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tenant: %w", err)
	}
	s.log.Info("tenant created", zap.String("tenant_id", t.ID.String()))
	return t, nil
}

func (s *TenantService) ListTenants(ctx context.Context) ([]models.Tenant, error) {
	return s.tenants.List(ctx)
}

// CreateAPIKey issues a new key for tenantID. The raw key is returned once;
// only its hash is stored.
func (s *TenantService) CreateAPIKey(ctx context.Context, tenantID uuid.UUID, name string) (string, *models.APIKey, error) {
	if _, err := s.tenants.GetByID(ctx, tenantID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, invalid("tenant not found")
		}
		return "", nil, fmt.Errorf("failed to load tenant: %w", err)
	}

	raw, err := auth.GenerateAPIKey()
	if err != nil {
		return "", nil, err
	}
	k := &models.APIKey{
		ID:        uuid.New(),
		TenantID:  tenantID,
		KeyHash:   auth.HashAPIKey(raw),
		CreatedAt: s.now(),
	}
	if name = strings.TrimSpace(name); name != "" {
		k.Name = &name
	}
	if err := s.apiKeys.Create(ctx, k); err != nil {
		return "", nil, fmt.Errorf("failed to create api key: %w", err)
	}
	s.log.Info("api key created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("key_id", k.ID.String()),
	)
	return raw, k, nil
}
