package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type AuditEntry struct {
	ID        uuid.UUID
	TenantID  string
	ActorType string // "admin", "superadmin", "system"
	ActorID   string
	Action    string // "user.approve", "qa.upsert", "document.ingest", ...
	Details   map[string]any
	CreatedAt time.Time
}

type AuditRepository interface {
	Record(ctx context.Context, entry *AuditEntry) error
	ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*AuditEntry, error)
}
