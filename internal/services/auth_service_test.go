package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traceops/backend/internal/auth"
	"github.com/traceops/backend/internal/models"
	"github.com/traceops/backend/internal/rbac"
	"go.uber.org/zap"
)

var testIssuer = auth.TokenIssuer{Secret: "0123456789abcdef0123456789abcdef", Issuer: "traceops", Expiration: time.Hour}

func newAuthFixture(t *testing.T) (*AuthService, *TenantService, models.Tenant) {
	t.Helper()
	tenants := newFakeTenantStore()
	keys := &fakeAPIKeyStore{}
	tenantSvc := NewTenantService(tenants, keys, zap.NewNop())
	authSvc := NewAuthService(newFakeUserStore(), tenants, keys, testIssuer, zap.NewNop())

	tenant, err := tenantSvc.CreateTenant(context.Background(), "  Acme  ")
	require.NoError(t, err)
	return authSvc, tenantSvc, *tenant
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, tenant := newAuthFixture(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{TenantID: tenant.ID, Email: "ops@acme.io", Password: "s3cret", Role: "auditor"})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAuditor, u.Role)
	assert.NotEqual(t, "s3cret", u.PasswordHash)

	token, got, err := svc.Login(ctx, tenant.ID, "ops@acme.io", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := testIssuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, claims.TenantID)
	assert.Equal(t, rbac.RoleAuditor, claims.Role)

	me, err := svc.Me(ctx, tenant.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ops@acme.io", me.Email)

	_, err = svc.Me(ctx, uuid.New(), u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, _, tenant := newAuthFixture(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterInput{TenantID: tenant.ID, Email: "ops@acme.io", Password: "s3cret"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, tenant.ID, "ops@acme.io", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, tenant.ID, "nobody@acme.io", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, uuid.New(), "ops@acme.io", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, tenant := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"no email", RegisterInput{TenantID: tenant.ID, Password: "x"}},
		{"no password", RegisterInput{TenantID: tenant.ID, Email: "a@b.c"}},
		{"bad role", RegisterInput{TenantID: tenant.ID, Email: "a@b.c", Password: "x", Role: "ROOT"}},
		{"unknown tenant", RegisterInput{TenantID: uuid.New(), Email: "a@b.c", Password: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}

	_, err := svc.Register(ctx, RegisterInput{TenantID: tenant.ID, Email: "a@b.c", Password: "x"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{TenantID: tenant.ID, Email: "a@b.c", Password: "y"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "user already exists", verr.Msg)
}

func TestAPIKeyLifecycle(t *testing.T) {
	authSvc, tenantSvc, tenant := newAuthFixture(t)
	ctx := context.Background()
	assert.Equal(t, "Acme", tenant.Name)

	raw, key, err := tenantSvc.CreateAPIKey(ctx, tenant.ID, "ingest")
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.Equal(t, auth.HashAPIKey(raw), key.KeyHash)
	require.NotNil(t, key.Name)
	assert.Equal(t, "ingest", *key.Name)

	got, err := authSvc.AuthenticateAPIKey(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, got.TenantID)

	_, err = authSvc.AuthenticateAPIKey(ctx, "not-a-key")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = authSvc.AuthenticateAPIKey(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = tenantSvc.CreateAPIKey(ctx, uuid.New(), "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCreateTenant_NameRequired(t *testing.T) {
	_, tenantSvc, _ := newAuthFixture(t)

	_, err := tenantSvc.CreateTenant(context.Background(), "   ")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	list, err := tenantSvc.ListTenants(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
