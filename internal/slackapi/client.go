package slackapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slack-go/slack"
)

// ErrEmptyFallback is returned when a post has no plain-text fallback. Slack
// needs it to render notifications.
var ErrEmptyFallback = errors.New("fallback text must not be empty")

const defaultPageSize = 200

// SlackAPI defines the subset of the Slack Web API used by Client.
type SlackAPI interface {
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	GetUserInfoContext(ctx context.Context, user string) (*slack.User, error)
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Client implements API on top of slack-go.
type Client struct {
	client   SlackAPI
	pageSize int
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithPageSize overrides the conversations.history page size.
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// NewClient wraps a Slack Web API client. Pass *slack.Client in production.
func NewClient(client SlackAPI, opts ...ClientOption) *Client {
	c := &Client{
		client:   client,
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ API = (*Client)(nil)

// FetchHistory returns every message in channelID newer than oldest, newest first.
func (c *Client) FetchHistory(ctx context.Context, channelID string, oldest time.Time) ([]Message, error) {
	var (
		messages []Message
		cursor   string
	)
	for {
		params := &slack.GetConversationHistoryParameters{
			ChannelID: channelID,
			Cursor:    cursor,
			Limit:     c.pageSize,
			Oldest:    FormatTimestamp(oldest),
		}
		resp, err := c.client.GetConversationHistoryContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("conversations.history channel=%s: %w", channelID, err)
		}
		for _, msg := range resp.Messages {
			messages = append(messages, Message{
				UserID:    msg.User,
				Text:      msg.Text,
				Timestamp: msg.Timestamp,
			})
		}
		if !resp.HasMore || resp.ResponseMetaData.NextCursor == "" {
			break
		}
		cursor = resp.ResponseMetaData.NextCursor
	}
	return messages, nil
}

// LookupUser resolves a Slack user id.
func (c *Client) LookupUser(ctx context.Context, userID string) (*User, error) {
	u, err := c.client.GetUserInfoContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("users.info user=%s: %w", userID, err)
	}
	if u == nil {
		return nil, fmt.Errorf("users.info user=%s: empty response", userID)
	}
	return &User{ID: u.ID, RealName: u.RealName}, nil
}

// PostMessage sends blocks with fallback text to channelID.
func (c *Client) PostMessage(ctx context.Context, channelID string, blocks []slack.Block, fallback string) error {
	if fallback == "" {
		return ErrEmptyFallback
	}
	_, _, err := c.client.PostMessageContext(ctx, channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(fallback, false),
	)
	if err != nil {
		return fmt.Errorf("chat.postMessage channel=%s: %w", channelID, err)
	}
	return nil
}
