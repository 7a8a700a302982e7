package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/campusbot/internal/messenger"
)

const (
	maxBodyBytes  = 1 << 20
	answerTimeout = 30 * time.Second

	usageText   = "Ask me a question about the college, e.g. `/ask library timings`."
	workingText = "Looking that up..."
)

// Answerer resolves a question for a tenant. *resolver.Resolver satisfies it.
type Answerer interface {
	Resolve(ctx context.Context, rawQuery, tenantID string) string
}

// Handler processes Slack webhooks (Events API and slash commands) for the
// single tenant bound to the Slack app.
type Handler struct {
	signingSecret string
	answerer      Answerer
	poster        messenger.Messenger
	tenantID      string

	pending sync.WaitGroup
}

// NewHandler creates a new Slack webhook handler.
func NewHandler(signingSecret string, answerer Answerer, poster messenger.Messenger, tenantID string) *Handler {
	return &Handler{
		signingSecret: signingSecret,
		answerer:      answerer,
		poster:        poster,
		tenantID:      tenantID,
	}
}

// slackEvent represents the outer envelope of Slack Events API payloads.
type slackEvent struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge,omitempty"`
	Event     json.RawMessage `json:"event,omitempty"`
}

// innerEvent represents the inner event within an event_callback.
type innerEvent struct {
	Type     string `json:"type"`
	Channel  string `json:"channel"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts,omitempty"`
	Text     string `json:"text"`
	User     string `json:"user"`
	BotID    string `json:"bot_id,omitempty"`
}

// HandleEvents is an http.HandlerFunc for POST /slack/events. Mentions are
// acknowledged immediately and answered in a thread in the background.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readVerified(w, r)
	if !ok {
		return
	}

	var envelope slackEvent
	if unmarshalErr := json.Unmarshal(body, &envelope); unmarshalErr != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	switch envelope.Type {
	case "url_verification":
		h.handleURLVerification(w, envelope.Challenge)
	case "event_callback":
		// Slack redelivers events it thinks timed out; the first delivery is
		// already being answered.
		if r.Header.Get("X-Slack-Retry-Num") != "" {
			w.WriteHeader(http.StatusOK)
			return
		}
		h.handleEventCallback(r.Context(), w, envelope.Event)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

// handleURLVerification responds to Slack's URL verification challenge.
func (h *Handler) handleURLVerification(w http.ResponseWriter, challenge string) {
	w.Header().Set("Content-Type", "application/json")

	resp := map[string]string{"challenge": challenge}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		log.Error().Err(encodeErr).Msg("slack: encode url verification response")
	}
}

// handleEventCallback processes an event_callback payload.
func (h *Handler) handleEventCallback(ctx context.Context, w http.ResponseWriter, rawEvent json.RawMessage) {
	var evt innerEvent
	if unmarshalErr := json.Unmarshal(rawEvent, &evt); unmarshalErr != nil {
		http.Error(w, "invalid event JSON", http.StatusBadRequest)
		return
	}

	// Only human mentions of the bot are answered.
	if evt.Type != "app_mention" || evt.BotID != "" {
		w.WriteHeader(http.StatusOK)
		return
	}

	parent := evt.ThreadTS
	if parent == "" {
		parent = evt.TS
	}

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()

		replyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), answerTimeout)
		defer cancel()

		text := usageText
		if question, ok := ParseQuestion(evt.Text); ok {
			text = h.answerer.Resolve(replyCtx, question, h.tenantID)
		}

		if _, err := h.poster.ReplyInThread(replyCtx, evt.Channel, messenger.MessageID(parent), text); err != nil {
			log.Error().Err(err).Str("channel", evt.Channel).Msg("slack: reply to mention")
		}
	}()

	w.WriteHeader(http.StatusOK)
}

// commandResponse is the JSON body returned to a slash command.
type commandResponse struct {
	ResponseType string `json:"response_type"`
	Text         string `json:"text"`
}

// HandleCommand is an http.HandlerFunc for POST /slack/commands. `/ask` is
// acknowledged at once and the answer is posted to the command's
// response_url, visible only to the asker. Slack drops slash command
// responses after three seconds.
func (h *Handler) HandleCommand(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readVerified(w, r)
	if !ok {
		return
	}

	// The body was consumed for signature verification; restore it so the
	// form can be parsed.
	r.Body = io.NopCloser(bytes.NewReader(body))

	cmd, err := slacklib.SlashCommandParse(r)
	if err != nil {
		http.Error(w, "failed to parse command", http.StatusBadRequest)
		return
	}

	var text string
	switch {
	case cmd.Command != AskCommand:
		text = fmt.Sprintf("Unknown command %s. %s", cmd.Command, usageText)
	default:
		question, hasQuestion := ParseQuestion(cmd.Text)
		if !hasQuestion {
			text = usageText
			break
		}
		if cmd.ResponseURL == "" {
			text = h.answerer.Resolve(r.Context(), question, h.tenantID)
			break
		}
		h.answerLater(r.Context(), cmd.ResponseURL, question)
		text = workingText
	}

	writeCommandResponse(w, text)
}

// answerLater resolves question in the background and posts the answer to
// responseURL.
func (h *Handler) answerLater(ctx context.Context, responseURL, question string) {
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()

		replyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), answerTimeout)
		defer cancel()

		msg := &slacklib.WebhookMessage{
			ResponseType:    "ephemeral",
			ReplaceOriginal: true,
			Text:            h.answerer.Resolve(replyCtx, question, h.tenantID),
		}
		if err := slacklib.PostWebhookContext(replyCtx, responseURL, msg); err != nil {
			log.Error().Err(err).Msg("slack: post command answer")
		}
	}()
}

func writeCommandResponse(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	if encodeErr := json.NewEncoder(w).Encode(commandResponse{ResponseType: "ephemeral", Text: text}); encodeErr != nil {
		log.Error().Err(encodeErr).Msg("slack: encode command response")
	}
}

// Wait blocks until background replies have been posted.
func (h *Handler) Wait() {
	h.pending.Wait()
}

func (h *Handler) readVerified(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return nil, false
	}

	if verifyErr := h.verifySignature(r.Header, body); verifyErr != nil {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return nil, false
	}

	return body, true
}

// verifySignature validates the Slack request signature using the signing secret.
func (h *Handler) verifySignature(header http.Header, body []byte) error {
	sv, err := slacklib.NewSecretsVerifier(header, h.signingSecret)
	if err != nil {
		return fmt.Errorf("slack.Handler.verifySignature: create verifier: %w", err)
	}

	if _, writeErr := sv.Write(body); writeErr != nil {
		return fmt.Errorf("slack.Handler.verifySignature: write body: %w", writeErr)
	}

	if ensureErr := sv.Ensure(); ensureErr != nil {
		return fmt.Errorf("slack.Handler.verifySignature: ensure: %w", ensureErr)
	}

	return nil
}
