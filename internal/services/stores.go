package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/repositories"
)

// The interfaces below are satisfied by the pgx repositories in
// internal/repositories and by in-memory fakes in tests.

type EventStore interface {
	InsertWithAlerts(ctx context.Context, events []models.AuditEvent, alerts []models.Alert) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.AuditEvent, error)
	List(ctx context.Context, tenantID uuid.UUID, f repositories.EventFilter) ([]models.AuditEvent, int, error)
	Stream(ctx context.Context, tenantID uuid.UUID, f repositories.EventFilter, fn func(*models.AuditEvent) error) error
}

type AlertStore interface {
	Create(ctx context.Context, a *models.Alert) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Alert, error)
	List(ctx context.Context, tenantID uuid.UUID, f repositories.AlertFilter) ([]models.Alert, int, error)
	Resolve(ctx context.Context, tenantID, id uuid.UUID, at time.Time) (*models.Alert, bool, error)
}

type SummaryStore interface {
	Summarize(ctx context.Context, tenantID uuid.UUID, from, to time.Time, topN int) (*models.Summary, error)
}

type ReportRunStore interface {
	Create(ctx context.Context, run *models.ReportRun) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]models.ReportRun, int, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ReportRun, error)
}

type TenantStore interface {
	Create(ctx context.Context, t *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	List(ctx context.Context) ([]models.Tenant, error)
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.User, error)
}

type APIKeyStore interface {
	Create(ctx context.Context, k *models.APIKey) error
	GetActiveByHash(ctx context.Context, keyHash string) (*models.APIKey, error)
}

// Page is one slice of a tenant-scoped listing.
type Page[T any] struct {
	Items  []T
	Total  int
	Limit  int
	Offset int
}

func (p Page[T]) HasMore() bool {
	return p.Offset+len(p.Items) < p.Total
}

const (
	DefaultPageLimit = 50
	DefaultRunsLimit = 20
	MaxPageLimit     = 200
)

// ClampPage applies the listing bounds: limit in [1, MaxPageLimit], def when unset, offset >= 0.
func ClampPage(limit, offset, def int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
