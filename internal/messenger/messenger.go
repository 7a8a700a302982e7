package messenger

import "context"

// MessageID uniquely identifies a message within a messenger platform.
type MessageID string

// Alert is a formatted notice for college staff, such as a forwarded question.
type Alert struct {
	Title   string // short headline
	Text    string // main body, markdown allowed
	Context string // small print under the body, e.g. tenant and time
}

// Messenger abstracts communication with a chat platform.
// Implementations handle platform-specific API calls; the interface is platform-agnostic.
type Messenger interface {
	// SendMessage posts a text message to a channel and returns its platform message ID.
	SendMessage(ctx context.Context, channelID, text string) (MessageID, error)

	// ReplyInThread posts text as a threaded reply under parentID.
	ReplyInThread(ctx context.Context, channelID string, parentID MessageID, text string) (MessageID, error)

	// SendAlert posts a formatted alert to a channel.
	SendAlert(ctx context.Context, channelID string, alert Alert) (MessageID, error)

	// Platform returns the messenger platform identifier (e.g. "slack").
	Platform() string
}
