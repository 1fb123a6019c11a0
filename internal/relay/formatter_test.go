package relay

import (
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ca-srg/slack-relay/internal/slackapi"
)

func TestIsRelevant(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		text string
		want bool
	}{
		{"This is relevant", true},
		{"URGENT: prod down", true},
		{"Needs Action by Friday", true},
		{"irrelevant chatter", true}, // substring, not whole word
		{"needs\naction", false},
		{"Build passed", false},
		{"", false},
	}

	for _, tt := range testcases {
		assert.Equal(t, tt.want, IsRelevant(tt.text), tt.text)
	}
}

func TestEligible(t *testing.T) {
	assert.True(t, Eligible(slackapi.Message{UserID: "U1", Text: "hi"}))
	assert.False(t, Eligible(slackapi.Message{Text: "hi"}))
	assert.False(t, Eligible(slackapi.Message{UserID: "U1"}))
}

func TestPermalink(t *testing.T) {
	assert.Equal(t,
		"https://acme.slack.com/archives/C123/p1700000000123456",
		Permalink("acme", "C123", "1700000000.123456"),
	)
}

func TestFormatTime(t *testing.T) {
	got, err := FormatTime("1700000000.123456", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "2023-11-14 22:13:20", got)

	tokyo := time.FixedZone("JST", 9*60*60)
	got, err = FormatTime("1700000000.000000", tokyo)
	require.NoError(t, err)
	assert.Equal(t, "2023-11-15 07:13:20", got)

	_, err = FormatTime("", time.UTC)
	assert.Error(t, err)
}

func TestFormatter_Build(t *testing.T) {
	f := &Formatter{Workspace: "acme", Location: time.UTC}
	msg := slackapi.Message{UserID: "U1", Text: "This needs action now", Timestamp: "1700000000.123456"}

	post, err := f.Build("C123", msg, "Ada Lovelace")
	require.NoError(t, err)

	assert.Equal(t, "Relevant comment from Ada Lovelace: This needs action now", post.Fallback)
	require.Len(t, post.Blocks, 5)

	header, ok := post.Blocks[0].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, slack.MarkdownType, header.Text.Type)
	assert.Equal(t, "*Relevant Comment from <#C123>*", header.Text.Text)

	byline, ok := post.Blocks[1].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "*Ada Lovelace* posted at *2023-11-14 22:13:20*:", byline.Text.Text)

	body, ok := post.Blocks[2].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "This needs action now", body.Text.Text)

	link, ok := post.Blocks[3].(*slack.ContextBlock)
	require.True(t, ok)
	require.Len(t, link.ContextElements.Elements, 1)
	linkText, ok := link.ContextElements.Elements[0].(*slack.TextBlockObject)
	require.True(t, ok)
	assert.Equal(t, "🔗 <https://acme.slack.com/archives/C123/p1700000000123456|View original message>", linkText.Text)

	assert.Equal(t, slack.MBTDivider, post.Blocks[4].BlockType())
}

func TestFormatter_DefaultsToLocalTime(t *testing.T) {
	f := &Formatter{Workspace: "acme"}
	post, err := f.Build("C1", slackapi.Message{UserID: "U1", Text: "urgent", Timestamp: "1700000000.000000"}, "Ada")
	require.NoError(t, err)

	want := time.Unix(1700000000, 0).In(time.Local).Format("2006-01-02 15:04:05")
	assert.Equal(t, "*Ada* posted at *"+want+"*:", post.Blocks[1].(*slack.SectionBlock).Text.Text)
}
