package v1

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/campusbot/internal/auth"
	"github.com/gosuda/campusbot/internal/domain"
	"github.com/gosuda/campusbot/internal/knowledge"
)

type CreateTenantInput struct {
	Body struct {
		ID              string `json:"id" pattern:"^[a-z0-9][a-z0-9-]{1,62}$" doc:"Stable URL-safe tenant ID"`
		DisplayName     string `json:"display_name" minLength:"1" maxLength:"255" doc:"College name"`
		ContactEmail    string `json:"contact_email,omitempty" maxLength:"255" doc:"Admin notification email"`
		AdminCredential string `json:"admin_credential,omitempty" maxLength:"128" doc:"Initial shared admin credential"`
		Seed            bool   `json:"seed,omitempty" doc:"Seed structured knowledge from the default dataset"`
	}
}

type ListTenantsOutput struct {
	Body []TenantBody
}

type TenantPathInput struct {
	ID string `path:"id" minLength:"2" maxLength:"63" doc:"Tenant ID"`
}

type SetTenantStatusInput struct {
	ID   string `path:"id" minLength:"2" maxLength:"63" doc:"Tenant ID"`
	Body struct {
		Status string `json:"status" enum:"active,suspended" doc:"New status"`
	}
}

type SeedTenantOutput struct {
	Body struct {
		TenantID string   `json:"tenant_id"`
		Sections []string `json:"sections"`
	}
}

// RegisterTenantRoutes registers the superadmin tenant management operations.
// dataset is the structured knowledge written by seeding.
func RegisterTenantRoutes(api huma.API, store DataStore, dataset *knowledge.Dataset) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-tenant",
		Method:        http.MethodPost,
		Path:          "/tenants",
		Summary:       "Create a tenant",
		Tags:          []string{"Tenants"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTenantInput) (*TenantOutput, error) {
		if err := requireSuperAdmin(ctx); err != nil {
			return nil, err
		}

		if !domain.ValidTenantID(input.Body.ID) {
			return nil, huma.Error422UnprocessableEntity("invalid tenant id")
		}

		now := time.Now()
		t := &domain.Tenant{
			ID:           input.Body.ID,
			DisplayName:  strings.TrimSpace(input.Body.DisplayName),
			ContactEmail: strings.TrimSpace(input.Body.ContactEmail),
			Status:       domain.TenantStatusActive,
			Settings:     map[string]any{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if input.Body.AdminCredential != "" {
			if len(input.Body.AdminCredential) < auth.MinSecretLength {
				return nil, huma.Error422UnprocessableEntity("admin credential is too short")
			}
			hash, err := auth.HashSecret(input.Body.AdminCredential)
			if err != nil {
				return nil, huma.Error500InternalServerError("failed to hash credential", err)
			}
			t.AdminCredentialHash = hash
		}

		if err := store.Tenants().Create(ctx, t); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, huma.Error409Conflict("tenant already exists")
			}
			return nil, huma.Error500InternalServerError("failed to create tenant", err)
		}

		recordAudit(ctx, store, t.ID, "tenant.create", map[string]any{"display_name": t.DisplayName})

		if input.Body.Seed {
			if err := knowledge.Seed(ctx, store.Knowledge(), t.ID, dataset, now); err != nil {
				return nil, huma.Error500InternalServerError("tenant created but seeding failed", err)
			}
			recordAudit(ctx, store, t.ID, "tenant.seed", nil)
		}

		return &TenantOutput{Body: tenantBody(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/tenants",
		Summary:     "List all tenants",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, _ *struct{}) (*ListTenantsOutput, error) {
		if err := requireSuperAdmin(ctx); err != nil {
			return nil, err
		}

		tenants, err := store.Tenants().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list tenants", err)
		}

		out := &ListTenantsOutput{Body: make([]TenantBody, 0, len(tenants))}
		for _, t := range tenants {
			out.Body = append(out.Body, tenantBody(t))
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/tenants/{id}",
		Summary:     "Get a tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *TenantPathInput) (*TenantOutput, error) {
		if err := requireSuperAdmin(ctx); err != nil {
			return nil, err
		}

		t, err := store.Tenants().GetByID(ctx, input.ID)
		if err != nil {
			return nil, tenantLookupError(err)
		}
		return &TenantOutput{Body: tenantBody(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-tenant-status",
		Method:      http.MethodPut,
		Path:        "/tenants/{id}/status",
		Summary:     "Activate or suspend a tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *SetTenantStatusInput) (*TenantOutput, error) {
		if err := requireSuperAdmin(ctx); err != nil {
			return nil, err
		}

		status := domain.TenantStatus(input.Body.Status)
		t, err := updateTenant(ctx, store, input.ID, func(t *domain.Tenant) { t.Status = status })
		if err != nil {
			return nil, err
		}

		recordAudit(ctx, store, t.ID, "tenant.status", map[string]any{"status": input.Body.Status})
		return &TenantOutput{Body: tenantBody(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "seed-tenant",
		Method:      http.MethodPost,
		Path:        "/tenants/{id}/seed",
		Summary:     "Replace the tenant's structured knowledge with the seed dataset",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *TenantPathInput) (*SeedTenantOutput, error) {
		if err := requireSuperAdmin(ctx); err != nil {
			return nil, err
		}

		if _, err := store.Tenants().GetByID(ctx, input.ID); err != nil {
			return nil, tenantLookupError(err)
		}

		if err := knowledge.Seed(ctx, store.Knowledge(), input.ID, dataset, time.Now()); err != nil {
			return nil, huma.Error500InternalServerError("failed to seed knowledge", err)
		}

		recordAudit(ctx, store, input.ID, "tenant.seed", nil)

		out := &SeedTenantOutput{}
		out.Body.TenantID = input.ID
		sections, _ := dataset.Document().Keys()
		slices.Sort(sections)
		out.Body.Sections = sections
		return out, nil
	})
}
