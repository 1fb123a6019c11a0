package relay

import (
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/ca-srg/slack-relay/internal/slackapi"
)

const (
	// UnknownUser replaces the author name when it cannot be resolved.
	UnknownUser = "Unknown User"

	timeLayout = "2006-01-02 15:04:05"
)

// FormattedPost is the Block Kit rendering of one relayed message.
type FormattedPost struct {
	Blocks   []slack.Block
	Fallback string
}

// Formatter builds relay posts (Block Kit)
type Formatter struct {
	Workspace string
	Location  *time.Location
}

// Build renders msg from channelID as header, author line, body, link and divider.
func (f *Formatter) Build(channelID string, msg slackapi.Message, author string) (*FormattedPost, error) {
	postedAt, err := FormatTime(msg.Timestamp, f.location())
	if err != nil {
		return nil, err
	}
	link := Permalink(f.Workspace, channelID, msg.Timestamp)

	blocks := []slack.Block{
		mrkdwnSection(fmt.Sprintf("*Relevant Comment from <#%s>*", channelID)),
		mrkdwnSection(fmt.Sprintf("*%s* posted at *%s*:", author, postedAt)),
		mrkdwnSection(msg.Text),
		slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("🔗 <%s|View original message>", link), false, false)),
		slack.NewDividerBlock(),
	}
	return &FormattedPost{
		Blocks:   blocks,
		Fallback: fmt.Sprintf("Relevant comment from %s: %s", author, msg.Text),
	}, nil
}

func (f *Formatter) location() *time.Location {
	if f.Location == nil {
		return time.Local
	}
	return f.Location
}

// Permalink builds the web link to a message: the timestamp with its dot removed.
func Permalink(workspace, channelID, ts string) string {
	return fmt.Sprintf("https://%s.slack.com/archives/%s/p%s", workspace, channelID, strings.ReplaceAll(ts, ".", ""))
}

// FormatTime renders a Slack timestamp as "YYYY-MM-DD HH:MM:SS" in loc.
func FormatTime(ts string, loc *time.Location) (string, error) {
	t, err := slackapi.ParseTimestamp(ts)
	if err != nil {
		return "", err
	}
	return t.In(loc).Format(timeLayout), nil
}

func mrkdwnSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}
