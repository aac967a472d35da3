package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/duedil-lab/diligent/pkg/service/notify"
	"github.com/duedil-lab/diligent/pkg/utils/logging"
)

// Notify holds configuration for terminal job notifications
type Notify struct {
	slackBotToken string
	slackChannel  string
}

// Flags returns CLI flags for notification configuration
func (n *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for job notifications",
			Category:    "Notification",
			Sources:     cli.EnvVars("DILIGENT_SLACK_BOT_TOKEN"),
			Destination: &n.slackBotToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel for job notifications",
			Category:    "Notification",
			Sources:     cli.EnvVars("DILIGENT_SLACK_CHANNEL"),
			Destination: &n.slackChannel,
		},
	}
}

func (n Notify) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("slack-bot-token.len", len(n.slackBotToken)),
		slog.String("slack-channel", n.slackChannel),
	)
}

// Configure returns a notifier, or a discarding one when Slack is not set up
func (n *Notify) Configure() (notify.Notifier, error) {
	if n.slackBotToken == "" || n.slackChannel == "" {
		logging.Default().Info("Slack notification not configured")
		return notify.Discard{}, nil
	}

	notifier, err := notify.New(n.slackBotToken, n.slackChannel)
	if err != nil {
		return nil, err
	}

	logging.Default().Info("Slack notification enabled", "channel", n.slackChannel)
	return notifier, nil
}
