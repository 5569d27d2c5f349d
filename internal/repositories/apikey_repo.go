package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/traceops/backend/internal/models"
)

type APIKeyRepo struct {
	pool *pgxpool.Pool
}

func NewAPIKeyRepo(pool *pgxpool.Pool) *APIKeyRepo {
	return &APIKeyRepo{pool: pool}
}

func (r *APIKeyRepo) Create(ctx context.Context, k *models.APIKey) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO api_keys (id, tenant_id, name, key_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, k.ID, k.TenantID, k.Name, k.KeyHash, k.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// GetActiveByHash finds a non-revoked key by its hash.
func (r *APIKeyRepo) GetActiveByHash(ctx context.Context, keyHash string) (*models.APIKey, error) {
	var k models.APIKey
	err := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, key_hash, created_at, revoked_at
		FROM api_keys WHERE key_hash = $1 AND revoked_at IS NULL
	`, keyHash).Scan(&k.ID, &k.TenantID, &k.Name, &k.KeyHash, &k.CreatedAt, &k.RevokedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &k, nil
}
