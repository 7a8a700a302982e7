package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/campusbot/internal/domain"
	"github.com/gosuda/campusbot/internal/resolver"
)

type ChatInput struct {
	Tenant string `path:"tenant" minLength:"2" maxLength:"63" doc:"Tenant ID"`
	Body   struct {
		Message string `json:"message" maxLength:"2000" doc:"Student question"`
	}
}

type ChatOutput struct {
	Body struct {
		Success  bool   `json:"success"`
		Response string `json:"response"`
	}
}

func RegisterChatRoutes(api huma.API, store DataStore, res Resolver) {
	huma.Register(api, huma.Operation{
		OperationID: "chat",
		Method:      http.MethodPost,
		Path:        "/chat/{tenant}",
		Summary:     "Ask the college assistant a question",
		Tags:        []string{"Chat"},
	}, func(ctx context.Context, input *ChatInput) (*ChatOutput, error) {
		if err := resolver.Validate(input.Body.Message); err != nil {
			return nil, huma.Error400BadRequest("empty query")
		}

		tenant, err := store.Tenants().GetByID(ctx, input.Tenant)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("tenant not found")
			}
			return nil, huma.Error500InternalServerError("failed to look up tenant", err)
		}
		if err := tenant.CheckActive(); err != nil {
			return nil, huma.Error404NotFound("tenant not found")
		}

		out := &ChatOutput{}
		out.Body.Success = true
		out.Body.Response = res.Resolve(ctx, input.Body.Message, tenant.ID)
		return out, nil
	})
}
