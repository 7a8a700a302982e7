package resolver_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/gosuda/campusbot/internal/domain"
	"github.com/gosuda/campusbot/internal/resolver"
)

func TestBuildContext(t *testing.T) {
	t.Parallel()

	entries := []*domain.QAEntry{
		{AnswerText: "First paragraph.", SourceType: domain.SourceDocumentExtract},
		{AnswerText: "Manual answer.", SourceType: domain.SourceManual},
		{AnswerText: "   ", SourceType: domain.SourceDocumentExtract},
		{AnswerText: "Second paragraph.", SourceType: domain.SourceDocumentExtract},
	}

	assert.Equal(t, "First paragraph.\n\nSecond paragraph.", resolver.BuildContext(entries))
	assert.Empty(t, resolver.BuildContext(nil))
}

func TestBuildContext_Truncates(t *testing.T) {
	t.Parallel()

	// Multi-byte runes make sure the bound counts characters, not bytes.
	para := strings.Repeat("ಕ", 3000)
	entries := make([]*domain.QAEntry, 0, 5)
	for range 5 {
		entries = append(entries, &domain.QAEntry{AnswerText: para, SourceType: domain.SourceDocumentExtract})
	}

	got := resolver.BuildContext(entries)
	assert.Equal(t, resolver.MaxContextRunes, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasPrefix(got, para+"\n\n"))
}

func TestBuildContext_ShortIsUntouched(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("a", resolver.MaxContextRunes)
	got := resolver.BuildContext([]*domain.QAEntry{{AnswerText: text, SourceType: domain.SourceDocumentExtract}})
	assert.Equal(t, text, got)
}
