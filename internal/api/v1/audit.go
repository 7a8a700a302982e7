package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

type AuditBody struct {
	ID        string         `json:"id"`
	ActorType string         `json:"actor_type"`
	ActorID   string         `json:"actor_id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type ListAuditInput struct {
	Limit  int `query:"limit" minimum:"1" maximum:"200" default:"50" doc:"Max results"`
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Offset for pagination"`
}

type ListAuditOutput struct {
	Body []AuditBody
}

func RegisterAuditRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-audit",
		Method:      http.MethodGet,
		Path:        "/audit",
		Summary:     "List admin actions, newest first",
		Tags:        []string{"Audit"},
	}, func(ctx context.Context, input *ListAuditInput) (*ListAuditOutput, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		entries, err := store.Audit().ListByTenant(ctx, tenantID, input.Limit, input.Offset)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list audit entries", err)
		}

		out := &ListAuditOutput{Body: make([]AuditBody, 0, len(entries))}
		for _, e := range entries {
			out.Body = append(out.Body, AuditBody{
				ID:        e.ID.String(),
				ActorType: e.ActorType,
				ActorID:   e.ActorID,
				Action:    e.Action,
				Details:   e.Details,
				CreatedAt: e.CreatedAt,
			})
		}
		return out, nil
	})
}
