package domain

import (
	"context"
	"time"
)

// StructuredKnowledge is a tenant's nested attribute document (admissions,
// examinations, facilities, contact info).
type StructuredKnowledge struct {
	TenantID  string
	Data      map[string]any
	UpdatedAt time.Time
}

type KnowledgeRepository interface {
	// Get returns ErrNotFound when the tenant has no document.
	Get(ctx context.Context, tenantID string) (*StructuredKnowledge, error)
	Put(ctx context.Context, k *StructuredKnowledge) error
}
