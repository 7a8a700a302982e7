package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/campusbot/internal/domain"
)

type MissLogRepo struct {
	pool *pgxpool.Pool
}

func NewMissLogRepo(pool *pgxpool.Pool) *MissLogRepo {
	return &MissLogRepo{pool: pool}
}

func (r *MissLogRepo) Append(ctx context.Context, entry *domain.MissLogEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO miss_log (id, tenant_id, query_text, created_at)
		 VALUES ($1, $2, $3, $4)`,
		entry.ID, entry.TenantID, entry.QueryText, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("missLogRepo.Append: %w", err)
	}

	return nil
}

func (r *MissLogRepo) List(ctx context.Context, tenantID string, limit int) ([]*domain.MissLogEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, tenant_id, query_text, created_at
		 FROM miss_log WHERE tenant_id = $1
		 ORDER BY created_at DESC, id
		 LIMIT $2`,
		tenantID, clampLimit(limit, 50),
	)
	if err != nil {
		return nil, fmt.Errorf("missLogRepo.List: %w", err)
	}
	defer rows.Close()

	var entries []*domain.MissLogEntry
	for rows.Next() {
		var e domain.MissLogEntry

		err = rows.Scan(&e.ID, &e.TenantID, &e.QueryText, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("missLogRepo.List: scan: %w", err)
		}

		entries = append(entries, &e)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("missLogRepo.List: rows: %w", err)
	}

	return entries, nil
}
