package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/campusbot/internal/docs"
)

type IngestDocumentInput struct {
	Body struct {
		Title string `json:"title" minLength:"1" maxLength:"255" doc:"Document title"`
		Text  string `json:"text" minLength:"1" maxLength:"1000000" doc:"Plain document text"`
	}
}

type IngestDocumentOutput struct {
	Body struct {
		DocumentID string `json:"document_id"`
		Fragments  int    `json:"fragments"`
		Archived   bool   `json:"archived"`
	}
}

func RegisterDocumentRoutes(api huma.API, store DataStore, ingester DocumentIngester) {
	huma.Register(api, huma.Operation{
		OperationID:   "ingest-document",
		Method:        http.MethodPost,
		Path:          "/documents",
		Summary:       "Ingest document text as Q&A extracts",
		Tags:          []string{"Documents"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *IngestDocumentInput) (*IngestDocumentOutput, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		res, err := ingester.Ingest(ctx, tenantID, input.Body.Title, input.Body.Text)
		if err != nil {
			if errors.Is(err, docs.ErrEmptyDocument) {
				return nil, huma.Error422UnprocessableEntity("document has no text")
			}
			return nil, huma.Error500InternalServerError("failed to ingest document", err)
		}

		recordAudit(ctx, store, tenantID, "document.ingest", map[string]any{
			"document_id": res.DocumentID.String(),
			"title":       input.Body.Title,
			"fragments":   res.Fragments,
		})

		out := &IngestDocumentOutput{}
		out.Body.DocumentID = res.DocumentID.String()
		out.Body.Fragments = res.Fragments
		out.Body.Archived = res.ObjectPath != ""
		return out, nil
	})
}
