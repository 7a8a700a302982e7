package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/campusbot/internal/domain"
)

type QAEntryBody struct {
	ID          string    `json:"id"`
	QuestionKey string    `json:"question_key"`
	AnswerText  string    `json:"answer_text"`
	SourceType  string    `json:"source_type"`
	Seq         int64     `json:"seq"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func qaEntryBody(e *domain.QAEntry) QAEntryBody {
	return QAEntryBody{
		ID:          e.ID.String(),
		QuestionKey: e.QuestionKey,
		AnswerText:  e.AnswerText,
		SourceType:  string(e.SourceType),
		Seq:         e.Seq,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type ListQAInput struct {
	Source string `query:"source" enum:"manual,document_extract" doc:"Filter by source type"`
}

type ListQAOutput struct {
	Body []QAEntryBody
}

type UpsertQAInput struct {
	Body struct {
		QuestionKey string `json:"question_key" minLength:"1" maxLength:"500" doc:"Trigger phrase, matched case-insensitively"`
		AnswerText  string `json:"answer_text" minLength:"1" maxLength:"10000" doc:"Answer returned on match"`
	}
}

type UpsertQAOutput struct {
	Body QAEntryBody
}

type DeleteQAInput struct {
	ID string `path:"id" format:"uuid" doc:"Entry ID"`
}

func RegisterQARoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "list-qa",
		Method:      http.MethodGet,
		Path:        "/qa",
		Summary:     "List Q&A entries in insertion order",
		Tags:        []string{"Q&A"},
	}, func(ctx context.Context, input *ListQAInput) (*ListQAOutput, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		var source *domain.SourceType
		if input.Source != "" {
			s := domain.SourceType(input.Source)
			source = &s
		}

		entries, err := store.QA().ListEntries(ctx, tenantID, source)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list entries", err)
		}

		out := &ListQAOutput{Body: make([]QAEntryBody, 0, len(entries))}
		for _, e := range entries {
			out.Body = append(out.Body, qaEntryBody(e))
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "upsert-qa",
		Method:      http.MethodPut,
		Path:        "/qa",
		Summary:     "Create or overwrite a manual Q&A entry",
		Description: "Re-submitting an existing key overwrites its answer and keeps its position.",
		Tags:        []string{"Q&A"},
	}, func(ctx context.Context, input *UpsertQAInput) (*UpsertQAOutput, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		entry := &domain.QAEntry{
			TenantID:    tenantID,
			QuestionKey: domain.NormalizeKey(input.Body.QuestionKey),
			AnswerText:  strings.TrimSpace(input.Body.AnswerText),
			SourceType:  domain.SourceManual,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := entry.Validate(); err != nil {
			return nil, huma.Error422UnprocessableEntity("question_key and answer_text must not be blank")
		}
		if err := store.QA().UpsertEntry(ctx, entry); err != nil {
			return nil, huma.Error500InternalServerError("failed to save entry", err)
		}

		recordAudit(ctx, store, tenantID, "qa.upsert", map[string]any{"question_key": entry.QuestionKey})

		return &UpsertQAOutput{Body: qaEntryBody(entry)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-qa",
		Method:        http.MethodDelete,
		Path:          "/qa/{id}",
		Summary:       "Delete a Q&A entry",
		Tags:          []string{"Q&A"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteQAInput) (*struct{}, error) {
		tenantID, err := adminTenant(ctx)
		if err != nil {
			return nil, err
		}

		id, err := uuid.Parse(input.ID)
		if err != nil {
			return nil, huma.Error400BadRequest("invalid entry id")
		}

		if err := store.QA().Delete(ctx, tenantID, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("entry not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete entry", err)
		}

		recordAudit(ctx, store, tenantID, "qa.delete", map[string]any{"id": id.String()})
		return nil, nil //nolint:nilnil // huma: empty 204 response
	})
}
