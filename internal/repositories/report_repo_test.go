//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traceops/backend/internal/models"
)

func TestReportRepo(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	tenant := seedTenant(t, pool)
	other := seedTenant(t, pool)
	repo := NewReportRepo(pool)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	older := &models.ReportRun{
		ID: uuid.New(), TenantID: tenant, Type: models.ReportTypeAuditPack, From: from, To: from.Add(24 * time.Hour),
		CreatedAt: from.Add(48 * time.Hour), FileName: "a.pdf", ContentType: models.ContentTypePDF, Data: []byte("%PDF-1"),
	}
	newer := *older
	newer.ID = uuid.New()
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	newer.FileName = "b.pdf"
	newer.Data = []byte("%PDF-2")
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, &newer))

	runs, total, err := repo.List(ctx, tenant, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, runs, 2)
	assert.Equal(t, newer.ID, runs[0].ID)
	assert.Nil(t, runs[0].Data)
	assert.True(t, runs[1].From.Equal(from))

	got, err := repo.GetByID(ctx, tenant, older.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1"), got.Data)
	assert.Equal(t, "a.pdf", got.FileName)

	_, err = repo.GetByID(ctx, other, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	runs, total, err = repo.List(ctx, other, 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, runs)
}

func TestUserAndAPIKeyRepos(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	tenant := seedTenant(t, pool)
	other := seedTenant(t, pool)

	users := NewUserRepo(pool)
	u := &models.User{ID: uuid.New(), TenantID: tenant, Email: "a@example.com", Role: "ADMIN", PasswordHash: "h", CreatedAt: time.Now().UTC()}
	require.NoError(t, users.Create(ctx, u))

	dup := *u
	dup.ID = uuid.New()
	assert.ErrorIs(t, users.Create(ctx, &dup), ErrDuplicate)

	dup.TenantID = other
	assert.NoError(t, users.Create(ctx, &dup))

	_, err := users.GetByEmail(ctx, other, "missing@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = users.GetByID(ctx, other, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	keys := NewAPIKeyRepo(pool)
	k := &models.APIKey{ID: uuid.New(), TenantID: tenant, KeyHash: uuid.NewString(), CreatedAt: time.Now().UTC()}
	require.NoError(t, keys.Create(ctx, k))

	got, err := keys.GetActiveByHash(ctx, k.KeyHash)
	require.NoError(t, err)
	assert.Equal(t, tenant, got.TenantID)

	_, err = pool.Exec(ctx, `UPDATE api_keys SET revoked_at = now() WHERE id = $1`, k.ID)
	require.NoError(t, err)
	_, err = keys.GetActiveByHash(ctx, k.KeyHash)
	assert.ErrorIs(t, err, ErrNotFound)
}
