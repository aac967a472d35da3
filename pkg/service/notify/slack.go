package notify

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/duedil-lab/diligent/pkg/domain/model"
	"github.com/duedil-lab/diligent/pkg/domain/types"
)

// Notifier announces terminal job outcomes
type Notifier interface {
	// NotifyJobDone posts a short message for a job that reached a terminal
	// status
	NotifyJobDone(ctx context.Context, job *model.Job) error
}

// client implements Notifier against the Slack Web API
type client struct {
	api     *slack.Client
	channel string
}

// New creates a Slack notifier posting to the given channel
func New(botToken, channel string) (Notifier, error) {
	if botToken == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channel == "" {
		return nil, goerr.New("Slack channel is required")
	}

	return &client{
		api:     slack.New(botToken),
		channel: channel,
	}, nil
}

// NotifyJobDone posts a completion or failure message for the job
func (c *client) NotifyJobDone(ctx context.Context, job *model.Job) error {
	text := buildText(job)

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
			nil, nil,
		),
	}

	_, _, err := c.api.PostMessageContext(ctx, c.channel,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post job notification",
			goerr.V("jobID", job.ID),
			goerr.V("channel", c.channel),
		)
	}

	return nil
}

func buildText(job *model.Job) string {
	switch job.Status {
	case types.JobStatusCompleted:
		return fmt.Sprintf(":white_check_mark: Investigation of *%s* completed (job `%s`)", job.CompanyName, job.ID)
	case types.JobStatusError:
		return fmt.Sprintf(":x: Investigation of *%s* failed (job `%s`): %s", job.CompanyName, job.ID, job.ErrorDetail)
	default:
		return fmt.Sprintf("Investigation of *%s* is %s (job `%s`)", job.CompanyName, job.Status, job.ID)
	}
}

// Discard is a Notifier that does nothing, used when Slack is not configured
type Discard struct{}

func (Discard) NotifyJobDone(ctx context.Context, job *model.Job) error { return nil }
