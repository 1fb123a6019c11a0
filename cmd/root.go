package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/joho/godotenv"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	appcfg "github.com/ca-srg/slack-relay/internal/config"
	"github.com/ca-srg/slack-relay/internal/observability"
	"github.com/ca-srg/slack-relay/internal/relay"
	"github.com/ca-srg/slack-relay/internal/slackapi"
)

var rootCmd = &cobra.Command{
	Use:   "slack-relay",
	Short: "Repost relevant Slack messages from one channel to another",
	Long: `slack-relay reads the last 24 hours of a source channel, keeps messages
mentioning "relevant", "urgent" or "needs action", and reposts them with
author, time and a link to the original into a destination channel.

Configuration is read from the environment (and a .env file if present):
SLACK_BOT_TOKEN, SLACK_WORKSPACE_NAME, SOURCE_CHANNEL_ID, DESTINATION_CHANNEL_ID.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
		return runRelay(cmd.Context(), cmd.OutOrStdout(), newSlackAPI)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

type apiFactory func(token string) slackapi.API

func newSlackAPI(token string) slackapi.API {
	return slackapi.NewClient(slack.New(token))
}

// runRelay never fails the process: configuration problems are printed and
// the run is skipped, run errors are logged by the relay itself.
func runRelay(ctx context.Context, out io.Writer, newAPI apiFactory) error {
	cfg, err := appcfg.Load()
	if err != nil {
		if errors.Is(err, appcfg.ErrMissingChannels) {
			fmt.Fprintln(out, "Error: SOURCE_CHANNEL_ID and DESTINATION_CHANNEL_ID must be set in your .env file.")
		} else {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		return nil
	}

	logger := log.New(out, "slack-relay ", log.LstdFlags)

	shutdown, err := observability.Init(ctx, cfg)
	if err != nil {
		logger.Printf("event=observability_init status=error err=%v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Printf("event=observability_shutdown status=error err=%v", err)
		}
	}()

	r := relay.New(newAPI(cfg.BotToken), relay.Options{
		SourceChannelID:      cfg.SourceChannelID,
		DestinationChannelID: cfg.DestinationChannelID,
		Formatter:            &relay.Formatter{Workspace: cfg.WorkspaceName, Location: cfg.Location()},
		Logger:               logger,
	})

	fmt.Fprintln(out, "Running bot to check for relevant messages...")
	r.Run(ctx)
	fmt.Fprintln(out, "Bot finished.")
	return nil
}
