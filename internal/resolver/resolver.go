// Package resolver answers a student's question for one tenant by walking an
// ordered chain of sources: small talk, the tenant's manual Q&A, an optional
// generative fallback over uploaded documents, and the structured knowledge
// formatters. Unanswered questions are logged and forwarded to the tenant admin.
package resolver

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/campusbot/internal/domain"
	"github.com/gosuda/campusbot/internal/knowledge"
	"github.com/gosuda/campusbot/internal/llm"
)

// ErrEmptyQuery is returned by Validate for blank input.
var ErrEmptyQuery = errors.New("resolver: empty query") //nolint:gochecknoglobals // sentinel error

// Canned replies.
const (
	GreetingReply = "Hello! How can I help you today? Ask me about admissions, fees, exams, or campus facilities."
	ThanksReply   = "You're welcome! Let me know if you have any other questions."
	MissReply     = "I'm not sure about that yet. Your question has been forwarded to the college admin."
)

const (
	defaultGenerationTimeout = 15 * time.Second
	forwardTimeout           = 30 * time.Second
)

var smallTalk = map[string]string{ //nolint:gochecknoglobals // static lookup
	"hi":        GreetingReply,
	"hello":     GreetingReply,
	"hey":       GreetingReply,
	"thanks":    ThanksReply,
	"thank you": ThanksReply,
}

// Forwarder is told about questions nothing could answer.
type Forwarder interface {
	QuestionForwarded(ctx context.Context, tenantID, query string) error
}

// Resolver is safe for concurrent use.
type Resolver struct {
	qa        domain.QARepository
	knowledge domain.KnowledgeRepository
	misses    domain.MissLogRepository

	generator  llm.Client
	genTimeout time.Duration
	forwarder  Forwarder
	now        func() time.Time

	// pending tracks in-flight forward notifications.
	pending sync.WaitGroup
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithGenerator enables the generative fallback. A non-positive timeout
// selects the 15s default.
func WithGenerator(c llm.Client, timeout time.Duration) Option {
	return func(r *Resolver) {
		r.generator = c
		if timeout > 0 {
			r.genTimeout = timeout
		}
	}
}

// WithForwarder sets who is notified about missed questions.
func WithForwarder(f Forwarder) Option {
	return func(r *Resolver) { r.forwarder = f }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// New creates a Resolver over the tenant-scoped stores.
func New(qa domain.QARepository, kn domain.KnowledgeRepository, misses domain.MissLogRepository, opts ...Option) *Resolver {
	r := &Resolver{
		qa:         qa,
		knowledge:  kn,
		misses:     misses,
		genTimeout: defaultGenerationTimeout,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Normalize trims and lowercases a raw query.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Validate returns ErrEmptyQuery when raw normalizes to nothing.
func Validate(raw string) error {
	if Normalize(raw) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// Resolve returns the answer to rawQuery for tenantID. It never fails:
// store and generator errors are logged and the next stage is tried. Callers
// reject empty queries with Validate first; an empty query here is a miss.
func (r *Resolver) Resolve(ctx context.Context, rawQuery, tenantID string) string {
	answer, stage := r.resolve(ctx, rawQuery, tenantID)
	answersTotal.WithLabelValues(stage).Inc()
	log.Debug().Str("tenant_id", tenantID).Str("stage", stage).Msg("resolver: query resolved")
	return answer
}

func (r *Resolver) resolve(ctx context.Context, rawQuery, tenantID string) (string, string) {
	query := Normalize(rawQuery)

	if reply, ok := smallTalk[query]; ok {
		return reply, StageSmallTalk
	}

	if query != "" {
		entries, err := r.qa.ListEntries(ctx, tenantID, nil)
		if err != nil {
			log.Error().Err(err).Str("tenant_id", tenantID).Msg("resolver: list qa entries")
		}

		if answer, ok := matchManual(query, entries); ok {
			return answer, StageManual
		}

		if answer, ok := r.generate(ctx, query, entries); ok {
			return answer, StageGenerative
		}

		if category, ok := knowledge.DetectCategory(query); ok {
			return knowledge.Format(category, r.loadDocument(ctx, tenantID)), StageStructured
		}
	}

	r.recordMiss(ctx, tenantID, rawQuery)
	return MissReply, StageMiss
}

// matchManual returns the answer of the first entry whose key contains the
// query or is contained in it. Manual entries are tried before document
// extracts, longer keys before shorter ones, then in insertion order.
func matchManual(query string, entries []*domain.QAEntry) (string, bool) {
	ordered := slices.Clone(entries)
	slices.SortStableFunc(ordered, func(a, b *domain.QAEntry) int {
		if c := cmp.Compare(sourceRank(a.SourceType), sourceRank(b.SourceType)); c != 0 {
			return c
		}
		if c := cmp.Compare(utf8.RuneCountInString(b.QuestionKey), utf8.RuneCountInString(a.QuestionKey)); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})

	for _, e := range ordered {
		key := domain.NormalizeKey(e.QuestionKey)
		if key == "" {
			continue
		}
		if strings.Contains(query, key) || strings.Contains(key, query) {
			return e.AnswerText, true
		}
	}
	return "", false
}

func sourceRank(s domain.SourceType) int {
	if s == domain.SourceManual {
		return 0
	}
	return 1
}

func (r *Resolver) generate(ctx context.Context, query string, entries []*domain.QAEntry) (string, bool) {
	if r.generator == nil {
		return "", false
	}

	docs := make([]*domain.QAEntry, 0, len(entries))
	for _, e := range entries {
		if e.SourceType == domain.SourceDocumentExtract {
			docs = append(docs, e)
		}
	}
	slices.SortStableFunc(docs, func(a, b *domain.QAEntry) int { return cmp.Compare(a.Seq, b.Seq) })

	docContext := BuildContext(docs)
	if docContext == "" {
		return "", false
	}

	genCtx, cancel := context.WithTimeout(ctx, r.genTimeout)
	defer cancel()

	start := time.Now()
	reply, err := r.generator.Complete(genCtx, fmt.Sprintf(promptTemplate, docContext, query))
	outcome := outcomeAnswered
	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		outcome = outcomeTimeout
	case err != nil:
		outcome = outcomeError
	case strings.TrimSpace(reply) == "":
		outcome = outcomeEmpty
	case isUnknown(reply):
		outcome = outcomeUnknown
	}
	generationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if err != nil {
		log.Warn().Err(err).Str("outcome", outcome).Msg("resolver: generative fallback failed")
		return "", false
	}
	if outcome != outcomeAnswered {
		return "", false
	}
	return strings.TrimSpace(reply), true
}

func (r *Resolver) loadDocument(ctx context.Context, tenantID string) knowledge.Document {
	k, err := r.knowledge.Get(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Error().Err(err).Str("tenant_id", tenantID).Msg("resolver: load knowledge")
		}
		return knowledge.NewDocument(nil)
	}
	return knowledge.NewDocument(k.Data)
}

// recordMiss appends the miss log entry before returning so the entry is
// durable when the caller sees the reply. The forward runs in the background.
func (r *Resolver) recordMiss(ctx context.Context, tenantID, rawQuery string) {
	entry := &domain.MissLogEntry{
		ID:        uuid.New(),
		TenantID:  tenantID,
		QueryText: rawQuery,
		CreatedAt: r.now(),
	}
	if err := r.misses.Append(ctx, entry); err != nil {
		log.Error().Err(err).Str("tenant_id", tenantID).Msg("resolver: append miss log")
	}

	if r.forwarder == nil {
		return
	}

	r.pending.Add(1)
	go func() {
		defer r.pending.Done()

		fwdCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), forwardTimeout)
		defer cancel()

		if err := r.forwarder.QuestionForwarded(fwdCtx, tenantID, rawQuery); err != nil {
			log.Warn().Err(err).Str("tenant_id", tenantID).Msg("resolver: forward question")
		}
	}()
}

// Wait blocks until in-flight forward notifications have finished.
func (r *Resolver) Wait() {
	r.pending.Wait()
}
