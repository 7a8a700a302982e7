package slack

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/campusbot/internal/messenger"
)

// SlackAPI abstracts the subset of the Slack client used by SlackMessenger.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackMessenger implements messenger.Messenger for Slack.
type SlackMessenger struct {
	api SlackAPI
}

// Compile-time interface check.
var _ messenger.Messenger = (*SlackMessenger)(nil) //nolint:gochecknoglobals // compile-time check

// NewSlackMessenger creates a SlackMessenger with the given API client.
func NewSlackMessenger(api SlackAPI) *SlackMessenger {
	return &SlackMessenger{api: api}
}

// New creates a SlackMessenger backed by the Slack Web API.
func New(botToken string) *SlackMessenger {
	return NewSlackMessenger(slacklib.New(botToken))
}

// SendMessage posts a text message to a Slack channel and returns the message timestamp as MessageID.
func (m *SlackMessenger) SendMessage(ctx context.Context, channelID, text string) (messenger.MessageID, error) {
	_, ts, err := m.api.PostMessageContext(ctx, channelID, slacklib.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("slack.SlackMessenger.SendMessage: %w", err)
	}

	return messenger.MessageID(ts), nil
}

// ReplyInThread posts a threaded reply under a parent message.
func (m *SlackMessenger) ReplyInThread(ctx context.Context, channelID string, parentID messenger.MessageID, text string) (messenger.MessageID, error) {
	_, ts, err := m.api.PostMessageContext(ctx, channelID,
		slacklib.MsgOptionTS(string(parentID)),
		slacklib.MsgOptionText(text, false),
	)
	if err != nil {
		return "", fmt.Errorf("slack.SlackMessenger.ReplyInThread: %w", err)
	}

	return messenger.MessageID(ts), nil
}

// SendAlert posts Block Kit alert blocks. The plain text fallback is used for
// notifications and clients without block support.
func (m *SlackMessenger) SendAlert(ctx context.Context, channelID string, alert messenger.Alert) (messenger.MessageID, error) {
	_, ts, err := m.api.PostMessageContext(ctx, channelID,
		slacklib.MsgOptionText(alertFallbackText(alert), false),
		slacklib.MsgOptionBlocks(BuildAlertBlocks(alert)...),
	)
	if err != nil {
		return "", fmt.Errorf("slack.SlackMessenger.SendAlert: %w", err)
	}

	return messenger.MessageID(ts), nil
}

// Platform returns the messenger platform identifier.
func (m *SlackMessenger) Platform() string {
	return "slack"
}
