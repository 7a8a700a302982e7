package slack

import (
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/campusbot/internal/messenger"
)

// maxSectionText is Slack's limit for a section block's text.
const maxSectionText = 3000

// BuildAlertBlocks builds a header, a markdown section, and an optional
// context line for an alert.
func BuildAlertBlocks(alert messenger.Alert) []slacklib.Block {
	blocks := make([]slacklib.Block, 0, 3)

	if alert.Title != "" {
		blocks = append(blocks, slacklib.NewHeaderBlock(
			slacklib.NewTextBlockObject(slacklib.PlainTextType, alert.Title, false, false),
		))
	}

	blocks = append(blocks, slacklib.NewSectionBlock(
		slacklib.NewTextBlockObject(slacklib.MarkdownType, truncate(alert.Text, maxSectionText), false, false),
		nil,
		nil,
	))

	if alert.Context != "" {
		blocks = append(blocks, slacklib.NewContextBlock("",
			slacklib.NewTextBlockObject(slacklib.MarkdownType, alert.Context, false, false),
		))
	}

	return blocks
}

func alertFallbackText(alert messenger.Alert) string {
	if alert.Title == "" {
		return alert.Text
	}
	return alert.Title + ": " + alert.Text
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
