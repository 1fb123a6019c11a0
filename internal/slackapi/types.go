package slackapi

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

// API is the chat capability the relay pipeline depends on.
type API interface {
	FetchHistory(ctx context.Context, channelID string, oldest time.Time) ([]Message, error)
	LookupUser(ctx context.Context, userID string) (*User, error)
	PostMessage(ctx context.Context, channelID string, blocks []slack.Block, fallback string) error
}

// Message is a raw channel history record as observed from Slack.
type Message struct {
	UserID    string
	Text      string
	Timestamp string
}

// User is the subset of a Slack user the relay renders.
type User struct {
	ID       string
	RealName string
}

// ParseTimestamp converts a Slack "seconds.micros" timestamp into time.Time.
func ParseTimestamp(ts string) (time.Time, error) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, fmt.Errorf("empty slack timestamp")
	}

	secondsPart, frac, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secondsPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slack timestamp %q: %w", ts, err)
	}

	var nsec int64
	if frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		frac += strings.Repeat("0", 9-len(frac))
		nsec, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid slack timestamp %q: %w", ts, err)
		}
	}
	return time.Unix(sec, nsec), nil
}

// FormatTimestamp renders t the way Slack expects for oldest/latest bounds.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}
