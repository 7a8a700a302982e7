package v1_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/campusbot/internal/api/v1"
	"github.com/gosuda/campusbot/internal/auth"
	"github.com/gosuda/campusbot/internal/domain"
)

// selfStore returns a store whose tenant repo holds a single tenant and
// records the last update.
func selfStore(tenant *domain.Tenant, updated **domain.Tenant, audit *auditRecorder) *mockDataStore {
	return &mockDataStore{
		tenants: &mockTenantRepo{
			getByIDFunc: func(_ context.Context, id string) (*domain.Tenant, error) {
				if id != tenant.ID {
					return nil, domain.ErrNotFound
				}
				return tenant, nil
			},
			updateFunc: func(_ context.Context, tn *domain.Tenant) error {
				*updated = tn
				return nil
			},
		},
		audit: audit,
	}
}

func TestGetOwnTenant(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	var updated *domain.Tenant
	tenant := &domain.Tenant{ID: "ambit", DisplayName: "Ambit", Status: domain.TenantStatusActive, AdminCredentialHash: "secret-hash"}

	v1.RegisterTenantSelfRoutes(api, selfStore(tenant, &updated, &auditRecorder{}), &mockAuthService{})

	resp := api.GetCtx(adminCtx("ambit"), "/tenant")

	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), "secret-hash")
	var body v1.TenantBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ambit", body.ID)
	assert.True(t, body.HasAdminCredential)

	resp = api.GetCtx(adminCtx("other"), "/tenant")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSetAdminCredential(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		audit := &auditRecorder{}
		authSvc := &mockAuthService{
			setAdminCredentialFunc: func(_ context.Context, tenantID, credential string) error {
				assert.Equal(t, "ambit", tenantID)
				assert.Equal(t, "new-admin-secret", credential)
				return nil
			},
		}

		v1.RegisterTenantSelfRoutes(api, &mockDataStore{audit: audit}, authSvc)

		resp := api.PutCtx(adminCtx("ambit"), "/tenant/credential", map[string]any{"credential": "new-admin-secret"})

		assert.Equal(t, http.StatusNoContent, resp.Code)
		assert.Equal(t, []string{"tenant.credential"}, audit.actions())
	})

	t.Run("weak_secret_is_422", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			setAdminCredentialFunc: func(context.Context, string, string) error { return auth.ErrWeakSecret },
		}

		v1.RegisterTenantSelfRoutes(api, &mockDataStore{audit: &auditRecorder{}}, authSvc)

		resp := api.PutCtx(adminCtx("ambit"), "/tenant/credential", map[string]any{"credential": "12345678"})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

func TestSetContactEmail(t *testing.T) {
	t.Parallel()

	t.Run("sets_and_clears", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		var updated *domain.Tenant
		audit := &auditRecorder{}
		tenant := &domain.Tenant{ID: "ambit"}

		v1.RegisterTenantSelfRoutes(api, selfStore(tenant, &updated, audit), &mockAuthService{})

		resp := api.PutCtx(adminCtx("ambit"), "/tenant/contact", map[string]any{"contact_email": " office@ambit.edu "})
		require.Equal(t, http.StatusOK, resp.Code)
		require.NotNil(t, updated)
		assert.Equal(t, "office@ambit.edu", updated.ContactEmail)

		resp = api.PutCtx(adminCtx("ambit"), "/tenant/contact", map[string]any{"contact_email": ""})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, updated.ContactEmail)
		assert.Equal(t, []string{"tenant.contact", "tenant.contact"}, audit.actions())
	})

	t.Run("invalid_is_422", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTenantSelfRoutes(api, &mockDataStore{}, &mockAuthService{})

		resp := api.PutCtx(adminCtx("ambit"), "/tenant/contact", map[string]any{"contact_email": "not-an-address"})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

func TestSetSlackChannel(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	var updated *domain.Tenant
	tenant := &domain.Tenant{ID: "ambit"}

	v1.RegisterTenantSelfRoutes(api, selfStore(tenant, &updated, &auditRecorder{}), &mockAuthService{})

	resp := api.PutCtx(adminCtx("ambit"), "/tenant/slack", map[string]any{"channel": "C0123ABCD"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, updated)
	channel, ok := updated.Setting(domain.SettingSlackChannel)
	require.True(t, ok)
	assert.Equal(t, "C0123ABCD", channel)

	resp = api.PutCtx(adminCtx("ambit"), "/tenant/slack", map[string]any{"channel": ""})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, updated.Settings, domain.SettingSlackChannel)
}
