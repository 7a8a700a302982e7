package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/campusbot/internal/domain"
)

//go:embed schema.sql
var schema string

type Store struct {
	pool      *pgxpool.Pool
	tenants   *TenantRepo
	users     *UserRepo
	qa        *QARepo
	knowledge *KnowledgeRepo
	misses    *MissLogRepo
	audit     *AuditRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:      pool,
		tenants:   NewTenantRepo(pool),
		users:     NewUserRepo(pool),
		qa:        NewQARepo(pool),
		knowledge: NewKnowledgeRepo(pool),
		misses:    NewMissLogRepo(pool),
		audit:     NewAuditRepo(pool),
	}, nil
}

// Migrate applies the idempotent schema. Safe to run on every start.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres.Store.Migrate: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Tenants() domain.TenantRepository      { return s.tenants }
func (s *Store) Users() domain.UserRepository          { return s.users }
func (s *Store) QA() domain.QARepository               { return s.qa }
func (s *Store) Knowledge() domain.KnowledgeRepository { return s.knowledge }
func (s *Store) MissLog() domain.MissLogRepository     { return s.misses }
func (s *Store) Audit() domain.AuditRepository         { return s.audit }
