package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
)

// Slack delivers notifications to a single Slack channel via the Web API.
type Slack struct {
	client  *slack.Client
	channel string
	logger  *slog.Logger
}

func NewSlack(botToken, channel string, logger *slog.Logger) *Slack {
	return &Slack{
		client:  slack.New(botToken),
		channel: channel,
		logger:  logger,
	}
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Send(ctx context.Context, text string) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return fmt.Errorf("slack send: %w", err)
	}
	return nil
}
