package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/campusbot/internal/domain"
)

type GetKnowledgeOutput struct {
	Body struct {
		Data      map[string]any `json:"data"`
		UpdatedAt time.Time      `json:"updated_at"`
	}
}

func RegisterKnowledgeRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "get-knowledge",
		Method:      http.MethodGet,
		Path:        "/knowledge",
		Summary:     "Get the tenant's structured knowledge document",
		Tags:        []string{"Knowledge"},
	}, func(ctx context.Context, _ *struct{}) (*GetKnowledgeOutput, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		k, err := store.Knowledge().Get(ctx, tenantID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("no structured knowledge for tenant")
			}
			return nil, huma.Error500InternalServerError("failed to load knowledge", err)
		}

		out := &GetKnowledgeOutput{}
		out.Body.Data = k.Data
		out.Body.UpdatedAt = k.UpdatedAt
		return out, nil
	})
}
