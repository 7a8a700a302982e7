package docs_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/campusbot/internal/docs"
	"github.com/gosuda/campusbot/internal/domain"
)

// --- mocks ---

type mockUpserter struct {
	entries   []*domain.QAEntry
	upsertErr error
}

func (m *mockUpserter) UpsertEntry(_ context.Context, e *domain.QAEntry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.entries = append(m.entries, e)
	return nil
}

type mockArchiver struct {
	archiveFunc func(ctx context.Context, tenantID string, docID uuid.UUID, title, text string) (string, error)
}

func (m *mockArchiver) Archive(ctx context.Context, tenantID string, docID uuid.UUID, title, text string) (string, error) {
	return m.archiveFunc(ctx, tenantID, docID, title, text)
}

func TestFragment(t *testing.T) {
	t.Parallel()

	t.Run("short paragraphs are packed together", func(t *testing.T) {
		t.Parallel()

		got := docs.Fragment("Library opens at 8 AM.\n\nCanteen closes at 9 PM.\r\n\r\nBus leaves at 5.", 100)
		assert.Equal(t, []string{"Library opens at 8 AM.\n\nCanteen closes at 9 PM.\n\nBus leaves at 5."}, got)
	})

	t.Run("paragraphs exceeding the limit start a new fragment", func(t *testing.T) {
		t.Parallel()

		got := docs.Fragment("aaaa\n\nbbbb\n  \ncccc", 10)
		assert.Equal(t, []string{"aaaa\n\nbbbb", "cccc"}, got)
	})

	t.Run("long paragraph splits on words", func(t *testing.T) {
		t.Parallel()

		got := docs.Fragment("one two three four", 9)
		assert.Equal(t, []string{"one two", "three", "four"}, got)
	})

	t.Run("oversized word is hard split", func(t *testing.T) {
		t.Parallel()

		got := docs.Fragment(strings.Repeat("x", 25), 10)
		assert.Equal(t, []string{strings.Repeat("x", 10), strings.Repeat("x", 10), strings.Repeat("x", 5)}, got)
	})

	t.Run("limit is counted in runes", func(t *testing.T) {
		t.Parallel()

		text := strings.Repeat("ಕನ್ನಡ ", 1000)
		for _, frag := range docs.Fragment(text, docs.MaxFragmentRunes) {
			assert.LessOrEqual(t, utf8.RuneCountInString(frag), docs.MaxFragmentRunes)
		}
	})

	t.Run("blank text yields nothing", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, docs.Fragment(" \n\n \t", 100))
	})
}

func TestIngest(t *testing.T) {
	t.Parallel()

	t.Run("upserts lowercased document extracts", func(t *testing.T) {
		t.Parallel()

		qa := &mockUpserter{}
		in := docs.NewIngester(qa, nil)

		res, err := in.Ingest(t.Context(), "ambit", "Handbook", "The Library opens at 8 AM.")
		require.NoError(t, err)

		assert.Equal(t, 1, res.Fragments)
		assert.Empty(t, res.ObjectPath)
		assert.NotEqual(t, uuid.Nil, res.DocumentID)
		require.Len(t, qa.entries, 1)
		assert.Equal(t, "ambit", qa.entries[0].TenantID)
		assert.Equal(t, "the library opens at 8 am.", qa.entries[0].QuestionKey)
		assert.Equal(t, "The Library opens at 8 AM.", qa.entries[0].AnswerText)
		assert.Equal(t, domain.SourceDocumentExtract, qa.entries[0].SourceType)
		assert.WithinDuration(t, time.Now(), qa.entries[0].CreatedAt, time.Minute)
		assert.Equal(t, qa.entries[0].CreatedAt, qa.entries[0].UpdatedAt)
	})

	t.Run("archives raw text before splitting", func(t *testing.T) {
		t.Parallel()

		var gotTenant, gotTitle string
		archiver := &mockArchiver{archiveFunc: func(_ context.Context, tenantID string, docID uuid.UUID, title, _ string) (string, error) {
			gotTenant, gotTitle = tenantID, title
			return "campusbot-docs/" + docs.ObjectName(tenantID, docID), nil
		}}
		in := docs.NewIngester(&mockUpserter{}, archiver)

		res, err := in.Ingest(t.Context(), "ambit", "Handbook", "text")
		require.NoError(t, err)

		assert.Equal(t, "ambit", gotTenant)
		assert.Equal(t, "Handbook", gotTitle)
		assert.Equal(t, "campusbot-docs/ambit/"+res.DocumentID.String()+".txt", res.ObjectPath)
	})

	t.Run("archive failure does not stop ingestion", func(t *testing.T) {
		t.Parallel()

		archiver := &mockArchiver{archiveFunc: func(context.Context, string, uuid.UUID, string, string) (string, error) {
			return "", errors.New("bucket unreachable")
		}}
		qa := &mockUpserter{}
		in := docs.NewIngester(qa, archiver)

		res, err := in.Ingest(t.Context(), "ambit", "t", "a\n\nb")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Fragments)
		assert.Empty(t, res.ObjectPath)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		_, err := docs.NewIngester(&mockUpserter{}, nil).Ingest(t.Context(), "ambit", "t", "   ")
		require.ErrorIs(t, err, docs.ErrEmptyDocument)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		t.Parallel()

		qa := &mockUpserter{upsertErr: errors.New("db down")}
		_, err := docs.NewIngester(qa, nil).Ingest(t.Context(), "ambit", "t", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "docs.Ingester.Ingest")
	})
}
