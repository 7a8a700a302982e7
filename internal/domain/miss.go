package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MissLogEntry records a question no data source could answer.
type MissLogEntry struct {
	ID        uuid.UUID
	TenantID  string
	QueryText string // raw text, case preserved
	CreatedAt time.Time
}

type MissLogRepository interface {
	Append(ctx context.Context, entry *MissLogEntry) error
	// List returns the newest entries first.
	List(ctx context.Context, tenantID string, limit int) ([]*MissLogEntry, error)
}
