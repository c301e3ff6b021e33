package slack

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jonny/kubot/internal/adapter/inbound/slackbot/template"
	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/port/outbound"
	slackapi "github.com/slack-go/slack"
)

// Config holds Slack notifier configuration.
type Config struct {
	BotToken string
	Debug    bool
}

// Notifier implements outbound.Notifier via the Slack Web API.
type Notifier struct {
	client *slackapi.Client
}

// NewNotifier creates a new Slack Notifier.
func NewNotifier(cfg Config) *Notifier {
	return &Notifier{
		client: slackapi.New(cfg.BotToken, slackapi.OptionDebug(cfg.Debug)),
	}
}

var _ outbound.Notifier = (*Notifier)(nil)

// SendResult posts the completion card for a finished background job.
func (n *Notifier) SendResult(ctx context.Context, channelID string, job model.AsyncJob) error {
	blocks := template.BuildJobBlocks(job)

	_, _, err := n.client.PostMessageContext(ctx, channelID,
		slackapi.MsgOptionBlocks(blocks...),
		slackapi.MsgOptionText(fmt.Sprintf("Job %s %s", job.ID, job.Status), false),
	)
	if err != nil {
		return fmt.Errorf("slack SendResult: %w", err)
	}
	return nil
}

// SendFile uploads file content as a channel attachment.
func (n *Notifier) SendFile(ctx context.Context, channelID, filename string, content []byte) error {
	_, err := n.client.UploadFileV2Context(ctx, slackapi.UploadFileV2Parameters{
		Channel:  channelID,
		Filename: filename,
		FileSize: len(content),
		Reader:   bytes.NewReader(content),
		Title:    filename,
	})
	if err != nil {
		return fmt.Errorf("slack SendFile: %w", err)
	}
	return nil
}
