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

func TestAlertRepo_Resolve(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	tenant := seedTenant(t, pool)
	other := seedTenant(t, pool)
	repo := NewAlertRepo(pool)

	a := &models.Alert{
		ID: uuid.New(), TenantID: tenant, Type: "MANUAL", Severity: models.SeverityLow,
		Title: "check", CreatedAt: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, a))

	_, _, err := repo.Resolve(ctx, other, a.ID, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByID(ctx, other, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	first := time.Date(2026, 7, 2, 10, 0, 0, 0, time.UTC)
	resolved, changed, err := repo.Resolve(ctx, tenant, a.ID, first)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, resolved.IsResolved)
	require.NotNil(t, resolved.ResolvedAt)
	assert.True(t, resolved.ResolvedAt.Equal(first))

	resolved, changed, err = repo.Resolve(ctx, tenant, a.ID, first.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, resolved.ResolvedAt.Equal(first))

	stored, err := repo.GetByID(ctx, tenant, a.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsResolved)
	assert.True(t, stored.ResolvedAt.Equal(first))

	_, _, err = repo.Resolve(ctx, tenant, uuid.New(), first)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAlertRepo_List(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	tenant := seedTenant(t, pool)
	repo := NewAlertRepo(pool)

	base := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		a := &models.Alert{
			ID: uuid.New(), TenantID: tenant, Type: "MANUAL", Severity: models.SeverityMedium,
			Title: "a", CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, a))
		ids = append(ids, a.ID)
	}
	_, _, err := repo.Resolve(ctx, tenant, ids[0], base)
	require.NoError(t, err)

	all, total, err := repo.List(ctx, tenant, AlertFilter{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)

	open := false
	unresolved, total, err := repo.List(ctx, tenant, AlertFilter{Resolved: &open, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, a := range unresolved {
		assert.False(t, a.IsResolved)
		assert.Nil(t, a.ResolvedAt)
	}
}
