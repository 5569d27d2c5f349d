//go:build integration

package repositories

import (
	"context"
	"flag"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/traceops/backend/internal/db"
	"github.com/traceops/backend/internal/models"
	"go.uber.org/zap"
)

// One container serves the whole package. Tests isolate themselves by
// creating their own tenants.
var (
	pgOnce      sync.Once
	pgContainer *postgres.PostgresContainer
	pgPool      *pgxpool.Pool
	pgErr       error
)

func TestMain(m *testing.M) {
	flag.Parse()
	code := m.Run()

	if pgPool != nil {
		pgPool.Close()
	}
	if pgContainer != nil {
		_ = pgContainer.Terminate(context.Background())
	}
	os.Exit(code)
}

// testPool returns a migrated pool, starting the container on first use.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	pgOnce.Do(func() {
		ctx := context.Background()
		pgContainer, pgErr = postgres.Run(ctx,
			"postgres:17-alpine",
			postgres.WithDatabase("traceops_test"),
			postgres.WithUsername("test"),
			postgres.WithPassword("test"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if pgErr != nil {
			return
		}

		var dsn string
		if dsn, pgErr = pgContainer.ConnectionString(ctx, "sslmode=disable"); pgErr != nil {
			return
		}
		if pgPool, pgErr = db.NewPostgresPool(ctx, dsn, zap.NewNop()); pgErr != nil {
			return
		}
		pgErr = db.RunMigrations(ctx, pgPool, db.Migrations(), zap.NewNop())
	})
	require.NoError(t, pgErr, "postgres container setup")
	return pgPool
}

func seedTenant(t *testing.T, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	tenant := &models.Tenant{ID: uuid.New(), Name: "tenant-" + t.Name(), CreatedAt: time.Now().UTC()}
	require.NoError(t, NewTenantRepo(pool).Create(context.Background(), tenant))
	return tenant.ID
}

func newEvent(tenantID uuid.UUID, at time.Time, actor, action string, result *string) models.AuditEvent {
	return models.AuditEvent{
		ID:         uuid.New(),
		TenantID:   tenantID,
		OccurredAt: at,
		Actor:      actor,
		Action:     action,
		Resource:   "reports",
		Result:     result,
	}
}

func insertEvents(t *testing.T, pool *pgxpool.Pool, events ...models.AuditEvent) {
	t.Helper()
	require.NoError(t, NewEventRepo(pool).InsertWithAlerts(context.Background(), events, nil))
}

func ptr(s string) *string { return &s }
