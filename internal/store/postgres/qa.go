package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/campusbot/internal/domain"
)

type QARepo struct {
	pool *pgxpool.Pool
}

func NewQARepo(pool *pgxpool.Pool) *QARepo {
	return &QARepo{pool: pool}
}

// ListEntries returns entries in insertion order. Callers that need a
// different precedence sort the result themselves.
func (r *QARepo) ListEntries(ctx context.Context, tenantID string, source *domain.SourceType) ([]*domain.QAEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, seq, tenant_id, question_key, answer_text, source_type, created_at, updated_at
		 FROM qa_entries
		 WHERE tenant_id = $1 AND ($2::text IS NULL OR source_type = $2)
		 ORDER BY seq`,
		tenantID, source,
	)
	if err != nil {
		return nil, fmt.Errorf("qaRepo.ListEntries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.QAEntry
	for rows.Next() {
		var e domain.QAEntry

		err = rows.Scan(&e.ID, &e.Seq, &e.TenantID, &e.QuestionKey, &e.AnswerText, &e.SourceType, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("qaRepo.ListEntries: scan: %w", err)
		}

		entries = append(entries, &e)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("qaRepo.ListEntries: rows: %w", err)
	}

	return entries, nil
}

// UpsertEntry writes e keyed by (tenant_id, question_key). On conflict the
// answer, source and updated_at are replaced while id, seq and created_at are
// kept; e is updated with the stored values. Zero timestamps are stamped now.
func (r *QARepo) UpsertEntry(ctx context.Context, e *domain.QAEntry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("qaRepo.UpsertEntry: %w", err)
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}

	err := r.pool.QueryRow(ctx,
		`INSERT INTO qa_entries (id, tenant_id, question_key, answer_text, source_type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (tenant_id, md5(question_key)) DO UPDATE SET
		     answer_text = EXCLUDED.answer_text,
		     source_type = EXCLUDED.source_type,
		     updated_at = EXCLUDED.updated_at
		 RETURNING id, seq, created_at, updated_at`,
		e.ID, e.TenantID, domain.NormalizeKey(e.QuestionKey), e.AnswerText, e.SourceType, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID, &e.Seq, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("qaRepo.UpsertEntry: %w", err)
	}
	e.QuestionKey = domain.NormalizeKey(e.QuestionKey)

	return nil
}

func (r *QARepo) Delete(ctx context.Context, tenantID string, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM qa_entries WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("qaRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("qaRepo.Delete: %w", domain.ErrNotFound)
	}

	return nil
}
