package v1_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/campusbot/internal/api/v1"
	"github.com/gosuda/campusbot/internal/domain"
	"github.com/gosuda/campusbot/internal/knowledge"
)

func testDataset(t *testing.T) *knowledge.Dataset {
	t.Helper()
	ds, err := knowledge.ParseDataset([]byte("fees:\n  hostel: 40000\nhostel:\n  available: true\n"))
	require.NoError(t, err)
	return ds
}

// ---------------------------------------------------------------------------
// POST /tenants
// ---------------------------------------------------------------------------

func TestCreateTenant(t *testing.T) {
	t.Parallel()

	t.Run("happy_path_with_seed", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		var created *domain.Tenant
		var seeded *domain.StructuredKnowledge
		audit := &auditRecorder{}
		store := &mockDataStore{
			tenants: &mockTenantRepo{createFunc: func(_ context.Context, tn *domain.Tenant) error {
				created = tn
				return nil
			}},
			knowledge: &mockKnowledgeRepo{putFunc: func(_ context.Context, k *domain.StructuredKnowledge) error {
				seeded = k
				return nil
			}},
			audit: audit,
		}

		v1.RegisterTenantRoutes(api, store, testDataset(t))

		resp := api.PostCtx(superAdminCtx(), "/tenants", map[string]any{
			"id":               "ambit",
			"display_name":     "  Ambit Institute ",
			"contact_email":    "office@ambit.edu",
			"admin_credential": "ambit-admin-2025",
			"seed":             true,
		})

		require.Equal(t, http.StatusCreated, resp.Code)

		var body struct {
			ID                 string `json:"id"`
			DisplayName        string `json:"display_name"`
			Status             string `json:"status"`
			HasAdminCredential bool   `json:"has_admin_credential"`
		}
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
		assert.Equal(t, "ambit", body.ID)
		assert.Equal(t, "Ambit Institute", body.DisplayName)
		assert.Equal(t, "active", body.Status)
		assert.True(t, body.HasAdminCredential)

		require.NotNil(t, created)
		assert.NotEqual(t, "ambit-admin-2025", created.AdminCredentialHash)
		assert.NotEmpty(t, created.AdminCredentialHash)
		assert.NotContains(t, resp.Body.String(), created.AdminCredentialHash, "credential hash must never be serialized")

		require.NotNil(t, seeded)
		assert.Equal(t, "ambit", seeded.TenantID)
		assert.Contains(t, seeded.Data, "fees")

		assert.Equal(t, []string{"tenant.create", "tenant.seed"}, audit.actions())
	})

	t.Run("without_seed_skips_knowledge", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		audit := &auditRecorder{}
		store := &mockDataStore{
			tenants: &mockTenantRepo{createFunc: func(context.Context, *domain.Tenant) error { return nil }},
			audit:   audit,
		}

		v1.RegisterTenantRoutes(api, store, testDataset(t))

		resp := api.PostCtx(superAdminCtx(), "/tenants", map[string]any{"id": "sjce", "display_name": "SJCE"})

		require.Equal(t, http.StatusCreated, resp.Code)
		assert.Contains(t, resp.Body.String(), `"has_admin_credential":false`)
		assert.Equal(t, []string{"tenant.create"}, audit.actions())
	})

	t.Run("duplicate_is_409", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			tenants: &mockTenantRepo{createFunc: func(context.Context, *domain.Tenant) error {
				return fmt.Errorf("tenantRepo.Create: %w", domain.ErrConflict)
			}},
			audit: &auditRecorder{},
		}

		v1.RegisterTenantRoutes(api, store, testDataset(t))

		resp := api.PostCtx(superAdminCtx(), "/tenants", map[string]any{"id": "ambit", "display_name": "Ambit"})

		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("short_credential_is_422", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTenantRoutes(api, &mockDataStore{}, testDataset(t))

		resp := api.PostCtx(superAdminCtx(), "/tenants", map[string]any{
			"id":               "ambit",
			"display_name":     "Ambit",
			"admin_credential": "short",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("bad_id_is_422", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTenantRoutes(api, &mockDataStore{}, testDataset(t))

		resp := api.PostCtx(superAdminCtx(), "/tenants", map[string]any{"id": "Bad ID!", "display_name": "X"})

		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("tenant_admin_is_forbidden", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTenantRoutes(api, &mockDataStore{}, testDataset(t))

		resp := api.PostCtx(adminCtx("ambit"), "/tenants", map[string]any{"id": "other", "display_name": "Other"})

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// GET /tenants, GET /tenants/{id}
// ---------------------------------------------------------------------------

func TestListAndGetTenants(t *testing.T) {
	t.Parallel()

	tenants := []*domain.Tenant{
		{ID: "ambit", DisplayName: "Ambit", Status: domain.TenantStatusActive, AdminCredentialHash: "h"},
		{ID: "sjce", DisplayName: "SJCE", Status: domain.TenantStatusSuspended},
	}
	repo := &mockTenantRepo{
		listFunc: func(context.Context) ([]*domain.Tenant, error) { return tenants, nil },
		getByIDFunc: func(_ context.Context, id string) (*domain.Tenant, error) {
			for _, tn := range tenants {
				if tn.ID == id {
					return tn, nil
				}
			}
			return nil, domain.ErrNotFound
		},
	}

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTenantRoutes(api, &mockDataStore{tenants: repo}, testDataset(t))

		resp := api.GetCtx(superAdminCtx(), "/tenants")

		require.Equal(t, http.StatusOK, resp.Code)
		var body []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body, 2)
		assert.Equal(t, "suspended", body[1].Status)
	})

	t.Run("get_missing_is_404", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTenantRoutes(api, &mockDataStore{tenants: repo}, testDataset(t))

		resp := api.GetCtx(superAdminCtx(), "/tenants/nowhere")

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("student_is_forbidden", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterTenantRoutes(api, &mockDataStore{tenants: repo}, testDataset(t))

		resp := api.GetCtx(studentCtx("ambit"), "/tenants")

		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// PUT /tenants/{id}/status, POST /tenants/{id}/seed
// ---------------------------------------------------------------------------

func TestSetTenantStatus(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	tenant := &domain.Tenant{ID: "ambit", Status: domain.TenantStatusActive}
	var updated *domain.Tenant
	audit := &auditRecorder{}
	store := &mockDataStore{
		tenants: &mockTenantRepo{
			getByIDFunc: func(context.Context, string) (*domain.Tenant, error) { return tenant, nil },
			updateFunc: func(_ context.Context, tn *domain.Tenant) error {
				updated = tn
				return nil
			},
		},
		audit: audit,
	}

	v1.RegisterTenantRoutes(api, store, testDataset(t))

	resp := api.PutCtx(superAdminCtx(), "/tenants/ambit/status", map[string]any{"status": "suspended"})

	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, updated)
	assert.Equal(t, domain.TenantStatusSuspended, updated.Status)
	assert.False(t, updated.UpdatedAt.IsZero())
	assert.Equal(t, []string{"tenant.status"}, audit.actions())

	resp = api.PutCtx(superAdminCtx(), "/tenants/ambit/status", map[string]any{"status": "deleted"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestSeedTenant(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		var seeded *domain.StructuredKnowledge
		store := &mockDataStore{
			tenants: &mockTenantRepo{getByIDFunc: func(context.Context, string) (*domain.Tenant, error) {
				return &domain.Tenant{ID: "ambit"}, nil
			}},
			knowledge: &mockKnowledgeRepo{putFunc: func(_ context.Context, k *domain.StructuredKnowledge) error {
				seeded = k
				return nil
			}},
			audit: &auditRecorder{},
		}

		v1.RegisterTenantRoutes(api, store, testDataset(t))

		resp := api.PostCtx(superAdminCtx(), "/tenants/ambit/seed")

		require.Equal(t, http.StatusOK, resp.Code)
		var body struct {
			TenantID string   `json:"tenant_id"`
			Sections []string `json:"sections"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ambit", body.TenantID)
		assert.Equal(t, []string{"fees", "hostel"}, body.Sections)
		require.NotNil(t, seeded)
		assert.Equal(t, "ambit", seeded.TenantID)
	})

	t.Run("unknown_tenant_is_404", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{
			tenants: &mockTenantRepo{getByIDFunc: func(context.Context, string) (*domain.Tenant, error) {
				return nil, domain.ErrNotFound
			}},
		}

		v1.RegisterTenantRoutes(api, store, testDataset(t))

		resp := api.PostCtx(superAdminCtx(), "/tenants/nowhere/seed")

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}
