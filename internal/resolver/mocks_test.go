package resolver_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gosuda/campusbot/internal/domain"
)

// memQA keeps entries per tenant in insertion order.
type memQA struct {
	mu      sync.Mutex
	seq     int64
	entries []*domain.QAEntry
	listErr error
}

func (m *memQA) add(tenantID, key, answer string, source domain.SourceType) domain.QAEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	e := &domain.QAEntry{
		ID:          uuid.New(),
		TenantID:    tenantID,
		QuestionKey: domain.NormalizeKey(key),
		AnswerText:  answer,
		SourceType:  source,
		Seq:         m.seq,
	}
	m.entries = append(m.entries, e)
	return *e
}

func (m *memQA) ListEntries(_ context.Context, tenantID string, source *domain.SourceType) ([]*domain.QAEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*domain.QAEntry
	for _, e := range m.entries {
		if e.TenantID != tenantID {
			continue
		}
		if source != nil && e.SourceType != *source {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// UpsertEntry overwrites the answer and source of an existing
// (tenant, key) entry, keeping its id and seq, or appends a new one.
func (m *memQA) UpsertEntry(_ context.Context, e *domain.QAEntry) error {
	key := domain.NormalizeKey(e.QuestionKey)

	m.mu.Lock()
	for _, cur := range m.entries {
		if cur.TenantID == e.TenantID && cur.QuestionKey == key {
			cur.AnswerText = e.AnswerText
			cur.SourceType = e.SourceType
			cur.UpdatedAt = e.UpdatedAt
			e.ID, e.Seq, e.CreatedAt, e.QuestionKey = cur.ID, cur.Seq, cur.CreatedAt, key
			m.mu.Unlock()
			return nil
		}
	}
	m.mu.Unlock()

	stored := m.add(e.TenantID, key, e.AnswerText, e.SourceType)
	e.ID, e.Seq, e.QuestionKey = stored.ID, stored.Seq, key
	return nil
}

func (m *memQA) Delete(context.Context, string, uuid.UUID) error { return nil }

type mockKnowledge struct {
	getFunc func(ctx context.Context, tenantID string) (*domain.StructuredKnowledge, error)
}

func (m *mockKnowledge) Get(ctx context.Context, tenantID string) (*domain.StructuredKnowledge, error) {
	if m.getFunc == nil {
		return nil, domain.ErrNotFound
	}
	return m.getFunc(ctx, tenantID)
}

func (m *mockKnowledge) Put(context.Context, *domain.StructuredKnowledge) error { return nil }

type memMisses struct {
	mu        sync.Mutex
	entries   []*domain.MissLogEntry
	appendErr error
}

func (m *memMisses) Append(_ context.Context, e *domain.MissLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memMisses) List(_ context.Context, tenantID string, _ int) ([]*domain.MissLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.MissLogEntry
	for _, e := range m.entries {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memMisses) all() []*domain.MissLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.MissLogEntry(nil), m.entries...)
}

type mockGenerator struct {
	completeFunc func(ctx context.Context, prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (m *mockGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	return m.completeFunc(ctx, prompt)
}

func (m *mockGenerator) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

type forwarded struct {
	tenantID string
	query    string
}

type mockForwarder struct {
	mu    sync.Mutex
	calls []forwarded
	err   error
}

func (m *mockForwarder) QuestionForwarded(_ context.Context, tenantID, query string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, forwarded{tenantID: tenantID, query: query})
	return m.err
}

func (m *mockForwarder) all() []forwarded {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]forwarded(nil), m.calls...)
}
