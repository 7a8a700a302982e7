package slack

import (
	"regexp"
	"strings"
)

// AskCommand is the slash command answered by HandleCommand.
const AskCommand = "/ask"

// mentionPattern matches a Slack-encoded mention (<@U12345>) at the start of a message.
var mentionPattern = regexp.MustCompile(`^\s*<@[A-Z0-9]+>[:,]?\s*`) //nolint:gochecknoglobals // compiled regexp

// ParseQuestion strips the leading bot mention from an app_mention text and
// returns the question. ok is false when nothing but the mention remains.
func ParseQuestion(text string) (question string, ok bool) {
	stripped := strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
	return stripped, stripped != ""
}
