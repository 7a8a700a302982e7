package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/campusbot/internal/api/v1"
	"github.com/gosuda/campusbot/internal/domain"
)

func chatStore(status domain.TenantStatus) *mockDataStore {
	return &mockDataStore{
		tenants: &mockTenantRepo{
			getByIDFunc: func(_ context.Context, id string) (*domain.Tenant, error) {
				if id != "ambit" {
					return nil, fmt.Errorf("tenantRepo.GetByID: %w", domain.ErrNotFound)
				}
				return &domain.Tenant{ID: "ambit", DisplayName: "Ambit", Status: status}, nil
			},
		},
	}
}

func TestChat(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		res := &mockResolver{resolveFunc: func(_ context.Context, rawQuery, tenantID string) string {
			assert.Equal(t, "What are the Library timings?", rawQuery, "raw query is passed through")
			assert.Equal(t, "ambit", tenantID)
			return "The library is open 8 AM to 8 PM."
		}}

		v1.RegisterChatRoutes(api, chatStore(domain.TenantStatusActive), res)

		resp := api.Post("/chat/ambit", map[string]any{"message": "What are the Library timings?"})

		require.Equal(t, http.StatusOK, resp.Code)
		var body struct {
			Success  bool   `json:"success"`
			Response string `json:"response"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.True(t, body.Success)
		assert.Equal(t, "The library is open 8 AM to 8 PM.", body.Response)
	})

	t.Run("whitespace_message_is_400", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterChatRoutes(api, chatStore(domain.TenantStatusActive), &mockResolver{})

		for _, msg := range []string{"", "   ", "\n\t"} {
			resp := api.Post("/chat/ambit", map[string]any{"message": msg})
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Contains(t, resp.Body.String(), "empty query")
		}
	})

	t.Run("unknown_tenant_is_404", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterChatRoutes(api, chatStore(domain.TenantStatusActive), &mockResolver{})

		resp := api.Post("/chat/nowhere", map[string]any{"message": "hi"})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("suspended_tenant_is_404", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterChatRoutes(api, chatStore(domain.TenantStatusSuspended), &mockResolver{})

		resp := api.Post("/chat/ambit", map[string]any{"message": "hi"})

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("store_error_is_500", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		store := &mockDataStore{tenants: &mockTenantRepo{
			getByIDFunc: func(context.Context, string) (*domain.Tenant, error) {
				return nil, errors.New("connection refused")
			},
		}}
		v1.RegisterChatRoutes(api, store, &mockResolver{})

		resp := api.Post("/chat/ambit", map[string]any{"message": "hi"})

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}
