package resolver

import (
	"strings"
	"unicode/utf8"

	"github.com/gosuda/campusbot/internal/domain"
)

// MaxContextRunes bounds the document context handed to the generator.
const MaxContextRunes = 10000

// unknownReply is the sentinel the generator must answer with when the
// context does not contain the answer.
const unknownReply = "UNKNOWN"

const promptTemplate = `You are a college help desk assistant. Answer the student's question using only the context below.
If the context does not contain the answer, reply with exactly ` + unknownReply + ` and nothing else.

Context:
%s

Question: %s`

// BuildContext joins the answer text of document extracts with blank lines
// and truncates the result to MaxContextRunes. Entries of other source types
// are ignored.
func BuildContext(entries []*domain.QAEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		if e.SourceType != domain.SourceDocumentExtract {
			continue
		}
		text := strings.TrimSpace(e.AnswerText)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}
	return truncateRunes(sb.String(), MaxContextRunes)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// isUnknown reports whether a generator reply means "no answer".
func isUnknown(reply string) bool {
	r := strings.TrimSpace(reply)
	r = strings.Trim(r, ".\"'` ")
	return strings.EqualFold(r, unknownReply)
}
