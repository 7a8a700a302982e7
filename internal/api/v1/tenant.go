package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/campusbot/internal/auth"
	"github.com/gosuda/campusbot/internal/domain"
)

// TenantBody is the public view of a tenant; the credential hash is never exposed.
type TenantBody struct {
	ID                 string         `json:"id"`
	DisplayName        string         `json:"display_name"`
	ContactEmail       string         `json:"contact_email,omitempty"`
	Status             string         `json:"status"`
	Settings           map[string]any `json:"settings,omitempty"`
	HasAdminCredential bool           `json:"has_admin_credential"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func tenantBody(t *domain.Tenant) TenantBody {
	return TenantBody{
		ID:                 t.ID,
		DisplayName:        t.DisplayName,
		ContactEmail:       t.ContactEmail,
		Status:             string(t.Status),
		Settings:           t.Settings,
		HasAdminCredential: t.AdminCredentialHash != "",
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

type TenantOutput struct {
	Body TenantBody
}

type SetCredentialInput struct {
	Body struct {
		Credential string `json:"credential" minLength:"8" maxLength:"128" doc:"New shared admin credential"`
	}
}

type SetContactInput struct {
	Body struct {
		ContactEmail string `json:"contact_email" maxLength:"255" doc:"Address for admin notifications; empty clears it"`
	}
}

type SetSlackChannelInput struct {
	Body struct {
		Channel string `json:"channel" maxLength:"80" doc:"Slack channel ID for forwarded questions; empty clears it"`
	}
}

// RegisterTenantSelfRoutes registers the tenant admin's view of their own tenant.
func RegisterTenantSelfRoutes(api huma.API, store DataStore, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-own-tenant",
		Method:      http.MethodGet,
		Path:        "/tenant",
		Summary:     "Get the admin's tenant",
		Tags:        []string{"Tenant"},
	}, func(ctx context.Context, _ *struct{}) (*TenantOutput, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		t, err := store.Tenants().GetByID(ctx, tenantID)
		if err != nil {
			return nil, tenantLookupError(err)
		}
		return &TenantOutput{Body: tenantBody(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "set-admin-credential",
		Method:        http.MethodPut,
		Path:          "/tenant/credential",
		Summary:       "Replace the shared admin credential",
		Tags:          []string{"Tenant"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *SetCredentialInput) (*struct{}, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		if err := authSvc.SetAdminCredential(ctx, tenantID, input.Body.Credential); err != nil {
			if errors.Is(err, auth.ErrWeakSecret) {
				return nil, huma.Error422UnprocessableEntity("credential is too short")
			}
			return nil, huma.Error500InternalServerError("failed to update credential", err)
		}

		recordAudit(ctx, store, tenantID, "tenant.credential", nil)
		return nil, nil //nolint:nilnil // huma: empty 204 response
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-contact-email",
		Method:      http.MethodPut,
		Path:        "/tenant/contact",
		Summary:     "Set the admin notification email",
		Tags:        []string{"Tenant"},
	}, func(ctx context.Context, input *SetContactInput) (*TenantOutput, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		email := strings.TrimSpace(input.Body.ContactEmail)
		if email != "" && !strings.Contains(email, "@") {
			return nil, huma.Error422UnprocessableEntity("invalid contact email")
		}

		t, err := updateTenant(ctx, store, tenantID, func(t *domain.Tenant) { t.ContactEmail = email })
		if err != nil {
			return nil, err
		}

		recordAudit(ctx, store, tenantID, "tenant.contact", map[string]any{"contact_email": email})
		return &TenantOutput{Body: tenantBody(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "set-slack-channel",
		Method:      http.MethodPut,
		Path:        "/tenant/slack",
		Summary:     "Set the Slack channel for forwarded questions",
		Tags:        []string{"Tenant"},
	}, func(ctx context.Context, input *SetSlackChannelInput) (*TenantOutput, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		channel := strings.TrimSpace(input.Body.Channel)
		t, err := updateTenant(ctx, store, tenantID, func(t *domain.Tenant) {
			if t.Settings == nil {
				t.Settings = map[string]any{}
			}
			if channel == "" {
				delete(t.Settings, domain.SettingSlackChannel)
			} else {
				t.Settings[domain.SettingSlackChannel] = channel
			}
		})
		if err != nil {
			return nil, err
		}

		recordAudit(ctx, store, tenantID, "tenant.slack_channel", map[string]any{"channel": channel})
		return &TenantOutput{Body: tenantBody(t)}, nil
	})
}

func updateTenant(ctx context.Context, store DataStore, tenantID string, mutate func(*domain.Tenant)) (*domain.Tenant, error) {
	t, err := store.Tenants().GetByID(ctx, tenantID)
	if err != nil {
		return nil, tenantLookupError(err)
	}

	mutate(t)
	t.UpdatedAt = time.Now()

	if err := store.Tenants().Update(ctx, t); err != nil {
		return nil, huma.Error500InternalServerError("failed to update tenant", err)
	}
	return t, nil
}

func tenantLookupError(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return huma.Error404NotFound("tenant not found")
	}
	return huma.Error500InternalServerError("failed to look up tenant", err)
}
