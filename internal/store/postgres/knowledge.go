package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/campusbot/internal/domain"
)

type KnowledgeRepo struct {
	pool *pgxpool.Pool
}

func NewKnowledgeRepo(pool *pgxpool.Pool) *KnowledgeRepo {
	return &KnowledgeRepo{pool: pool}
}

func (r *KnowledgeRepo) Get(ctx context.Context, tenantID string) (*domain.StructuredKnowledge, error) {
	var k domain.StructuredKnowledge

	err := r.pool.QueryRow(ctx,
		`SELECT tenant_id, data, updated_at FROM knowledge_documents WHERE tenant_id = $1`,
		tenantID,
	).Scan(&k.TenantID, &k.Data, &k.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("knowledgeRepo.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("knowledgeRepo.Get: %w", err)
	}

	return &k, nil
}

func (r *KnowledgeRepo) Put(ctx context.Context, k *domain.StructuredKnowledge) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO knowledge_documents (tenant_id, data, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (tenant_id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		k.TenantID, k.Data, k.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("knowledgeRepo.Put: %w", err)
	}

	return nil
}
