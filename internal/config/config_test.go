package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SOURCE_CHANNEL_ID", "C123")
	t.Setenv("DESTINATION_CHANNEL_ID", "C456")
}

func TestLoad(t *testing.T) {
	t.Run("parses values and applies defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SLACK_WORKSPACE_NAME", "")
		t.Setenv("RELAY_TIMEZONE", "")

		cfg, err := Load()
		require.NoError(t, err)

		require.Equal(t, "xoxb-test", cfg.BotToken)
		require.Equal(t, "C123", cfg.SourceChannelID)
		require.Equal(t, "C456", cfg.DestinationChannelID)
		require.Equal(t, DefaultWorkspaceName, cfg.WorkspaceName)
		require.Equal(t, time.Local, cfg.Location())
		require.False(t, cfg.OTelEnabled)
		require.Equal(t, "slack-relay", cfg.OTelServiceName)
		require.Equal(t, 60*time.Second, cfg.OTelMetricExportInterval)
	})

	t.Run("trims whitespace and resolves timezone", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SOURCE_CHANNEL_ID", "  C123 ")
		t.Setenv("SLACK_WORKSPACE_NAME", " acme ")
		t.Setenv("RELAY_TIMEZONE", "UTC")

		cfg, err := Load()
		require.NoError(t, err)

		require.Equal(t, "C123", cfg.SourceChannelID)
		require.Equal(t, "acme", cfg.WorkspaceName)
		require.Equal(t, "UTC", cfg.Location().String())
	})

	t.Run("missing source channel", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SOURCE_CHANNEL_ID", "")

		_, err := Load()
		require.Error(t, err)
		require.True(t, errors.Is(err, ErrMissingChannels))
	})

	t.Run("missing destination channel", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DESTINATION_CHANNEL_ID", "   ")

		_, err := Load()
		require.ErrorIs(t, err, ErrMissingChannels)
	})

	t.Run("missing bot token", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SLACK_BOT_TOKEN", "")

		_, err := Load()
		require.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("invalid timezone", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("RELAY_TIMEZONE", "Not/AZone")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "RELAY_TIMEZONE")
	})
}
