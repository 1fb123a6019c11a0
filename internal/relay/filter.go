package relay

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ca-srg/slack-relay/internal/slackapi"
)

// Keywords mark a message for reposting when any of them appears in its text.
// Matching is a case-insensitive substring test, not a whole-word match.
var Keywords = []string{"relevant", "urgent", "needs action"}

// IsRelevant reports whether text contains at least one of Keywords.
func IsRelevant(text string) bool {
	lowered := cases.Lower(language.Und).String(text)
	for _, kw := range Keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Eligible reports whether msg has both an author and text. System events
// such as channel joins and bot posts without a user are skipped.
func Eligible(msg slackapi.Message) bool {
	return msg.UserID != "" && msg.Text != ""
}
