package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SourceType string

const (
	SourceManual          SourceType = "manual"
	SourceDocumentExtract SourceType = "document_extract"
)

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	return s == SourceManual || s == SourceDocumentExtract
}

// QAEntry is a tenant-scoped trigger phrase and its answer.
// Seq is the insertion position; an upsert of an existing key keeps it.
type QAEntry struct {
	ID          uuid.UUID
	TenantID    string
	QuestionKey string
	AnswerText  string
	SourceType  SourceType
	Seq         int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeKey lowercases and trims a question key for storage and matching.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Validate reports ErrBlankEntry when the key or answer is blank.
func (e *QAEntry) Validate() error {
	if NormalizeKey(e.QuestionKey) == "" || strings.TrimSpace(e.AnswerText) == "" {
		return ErrBlankEntry
	}
	return nil
}

type QARepository interface {
	// ListEntries returns the tenant's entries in insertion order, optionally
	// filtered by source type.
	ListEntries(ctx context.Context, tenantID string, source *SourceType) ([]*QAEntry, error)
	// UpsertEntry inserts or overwrites the entry keyed by (TenantID, QuestionKey).
	UpsertEntry(ctx context.Context, e *QAEntry) error
	Delete(ctx context.Context, tenantID string, id uuid.UUID) error
}
