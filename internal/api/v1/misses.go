package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

type MissBody struct {
	ID        string    `json:"id"`
	QueryText string    `json:"query_text"`
	CreatedAt time.Time `json:"created_at"`
}

type ListMissesInput struct {
	Limit int `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Max results, newest first"`
}

type ListMissesOutput struct {
	Body []MissBody
}

func RegisterMissRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-misses",
		Method:      http.MethodGet,
		Path:        "/misses",
		Summary:     "List questions the assistant could not answer",
		Tags:        []string{"Misses"},
	}, func(ctx context.Context, input *ListMissesInput) (*ListMissesOutput, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		entries, err := store.MissLog().List(ctx, tenantID, input.Limit)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list misses", err)
		}

		out := &ListMissesOutput{Body: make([]MissBody, 0, len(entries))}
		for _, e := range entries {
			out.Body = append(out.Body, MissBody{ID: e.ID.String(), QueryText: e.QueryText, CreatedAt: e.CreatedAt})
		}
		return out, nil
	})
}
