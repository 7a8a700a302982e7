// Package docs turns uploaded document text into document_extract Q&A
// entries that feed manual matching and the generative context.
package docs

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/campusbot/internal/domain"
)

// MaxFragmentRunes bounds the length of a single extracted fragment.
const MaxFragmentRunes = 2000

// ErrEmptyDocument is returned when a document has no text.
var ErrEmptyDocument = errors.New("docs: empty document") //nolint:gochecknoglobals // sentinel error

var blankLine = regexp.MustCompile(`\n[ \t\r]*\n`) //nolint:gochecknoglobals // compiled regexp

// EntryUpserter stores Q&A entries. domain.QARepository satisfies it.
type EntryUpserter interface {
	UpsertEntry(ctx context.Context, e *domain.QAEntry) error
}

// Result describes one ingestion.
type Result struct {
	DocumentID uuid.UUID
	Fragments  int
	ObjectPath string // empty when archiving is disabled or failed
}

// Ingester splits documents into fragments and stores them for a tenant.
type Ingester struct {
	qa       EntryUpserter
	archiver Archiver
}

// NewIngester creates an Ingester. archiver may be nil.
func NewIngester(qa EntryUpserter, archiver Archiver) *Ingester {
	return &Ingester{qa: qa, archiver: archiver}
}

// Ingest archives the raw text when an archiver is configured, then upserts
// one document_extract entry per fragment. An archive failure is logged and
// does not stop ingestion.
func (in *Ingester) Ingest(ctx context.Context, tenantID, title, text string) (*Result, error) {
	fragments := Fragment(text, MaxFragmentRunes)
	if len(fragments) == 0 {
		return nil, ErrEmptyDocument
	}

	res := &Result{DocumentID: uuid.New()}

	if in.archiver != nil {
		path, err := in.archiver.Archive(ctx, tenantID, res.DocumentID, title, text)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", tenantID).Str("title", title).Msg("docs: archive document")
		} else {
			res.ObjectPath = path
		}
	}

	now := time.Now()
	for _, frag := range fragments {
		entry := &domain.QAEntry{
			TenantID:    tenantID,
			QuestionKey: domain.NormalizeKey(frag),
			AnswerText:  frag,
			SourceType:  domain.SourceDocumentExtract,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := in.qa.UpsertEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("docs.Ingester.Ingest: upsert fragment %d: %w", res.Fragments, err)
		}
		res.Fragments++
	}

	return res, nil
}

// Fragment splits text into paragraphs and packs consecutive paragraphs into
// fragments of at most limit runes. A paragraph longer than limit is split on
// word boundaries, or hard-split when a single word exceeds it.
func Fragment(text string, limit int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		out     []string
		current strings.Builder
		curLen  int
	)

	flush := func() {
		if curLen > 0 {
			out = append(out, current.String())
			current.Reset()
			curLen = 0
		}
	}

	for _, para := range blankLine.Split(text, -1) {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		for _, piece := range splitLong(para, limit) {
			n := utf8.RuneCountInString(piece)
			// Paragraphs are joined with a blank line, which costs two runes.
			if curLen > 0 && curLen+2+n > limit {
				flush()
			}
			if curLen > 0 {
				current.WriteString("\n\n")
				curLen += 2
			}
			current.WriteString(piece)
			curLen += n
		}
	}
	flush()

	return out
}

func splitLong(para string, limit int) []string {
	if utf8.RuneCountInString(para) <= limit {
		return []string{para}
	}

	var out []string
	var line []rune
	for _, w := range strings.Fields(para) {
		wr := []rune(w)
		for len(wr) > limit {
			if len(line) > 0 {
				out = append(out, string(line))
				line = line[:0]
			}
			out = append(out, string(wr[:limit]))
			wr = wr[limit:]
		}
		if len(line) > 0 && len(line)+1+len(wr) > limit {
			out = append(out, string(line))
			line = line[:0]
		}
		if len(line) > 0 {
			line = append(line, ' ')
		}
		line = append(line, wr...)
	}
	if len(line) > 0 {
		out = append(out, string(line))
	}

	return out
}
