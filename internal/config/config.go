package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	env "github.com/netflix/go-env"
)

// DefaultWorkspaceName is used in permalinks when SLACK_WORKSPACE_NAME is unset.
const DefaultWorkspaceName = "yourworkspace"

var (
	// ErrMissingChannels is returned when the source or destination channel is not configured.
	ErrMissingChannels = errors.New("SOURCE_CHANNEL_ID and DESTINATION_CHANNEL_ID must be set")
	// ErrMissingToken is returned when SLACK_BOT_TOKEN is not configured.
	ErrMissingToken = errors.New("SLACK_BOT_TOKEN must be set")
)

// RelayConfig holds the settings of a single relay run. It is read once at
// process start and passed down by value.
type RelayConfig struct {
	BotToken             string `env:"SLACK_BOT_TOKEN"`
	WorkspaceName        string `env:"SLACK_WORKSPACE_NAME,default=yourworkspace"`
	SourceChannelID      string `env:"SOURCE_CHANNEL_ID"`
	DestinationChannelID string `env:"DESTINATION_CHANNEL_ID"`
	// IANA zone used to render message times; empty means the process local zone
	Timezone string `env:"RELAY_TIMEZONE"`

	// OpenTelemetry
	OTelEnabled              bool          `env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string        `env:"OTEL_SERVICE_NAME,default=slack-relay"`
	OTelExporterOTLPEndpoint string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string        `env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelResourceAttributes   string        `env:"OTEL_RESOURCE_ATTRIBUTES"`
	OTelMetricExportInterval time.Duration `env:"OTEL_METRIC_EXPORT_INTERVAL,default=60s"`

	location *time.Location
}

// Load reads the relay configuration from environment variables.
func Load() (*RelayConfig, error) {
	var cfg RelayConfig
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *RelayConfig) error {
	cfg.BotToken = strings.TrimSpace(cfg.BotToken)
	cfg.WorkspaceName = strings.TrimSpace(cfg.WorkspaceName)
	cfg.SourceChannelID = strings.TrimSpace(cfg.SourceChannelID)
	cfg.DestinationChannelID = strings.TrimSpace(cfg.DestinationChannelID)
	cfg.Timezone = strings.TrimSpace(cfg.Timezone)

	if cfg.WorkspaceName == "" {
		cfg.WorkspaceName = DefaultWorkspaceName
	}

	if cfg.SourceChannelID == "" || cfg.DestinationChannelID == "" {
		return ErrMissingChannels
	}
	if cfg.BotToken == "" {
		return ErrMissingToken
	}

	cfg.location = time.Local
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return fmt.Errorf("invalid RELAY_TIMEZONE %q: %w", cfg.Timezone, err)
		}
		cfg.location = loc
	}
	return nil
}

// Location returns the zone message times are rendered in.
func (c *RelayConfig) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}
