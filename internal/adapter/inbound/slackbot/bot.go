package slackbot

import (
	"context"
	"log/slog"

	"github.com/jonny/kubot/internal/domain/port/inbound"
	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
)

// Config holds Slack bot configuration.
type Config struct {
	BotToken string
	AppToken string
	// Channel restricts the bot to one channel; empty means any channel the
	// bot is invited to.
	Channel string
	// ConfirmToken is rendered on the confirmation card so a button click
	// submits the same literal text a user would type.
	ConfirmToken string
	Debug        bool
}

// Bot handles incoming Slack events via Socket Mode and routes them to the
// session engine.
type Bot struct {
	client     *slackapi.Client
	socketMode *socketmode.Client
	session    inbound.SessionPort
	config     Config
	logger     *slog.Logger
}

// NewBot creates a new Bot with Socket Mode enabled.
func NewBot(cfg Config, session inbound.SessionPort, logger *slog.Logger) *Bot {
	client := slackapi.New(cfg.BotToken,
		slackapi.OptionAppLevelToken(cfg.AppToken),
		slackapi.OptionDebug(cfg.Debug),
	)
	sm := socketmode.New(client)
	return &Bot{
		client:     client,
		socketMode: sm,
		session:    session,
		config:     cfg,
		logger:     logger,
	}
}

// Start begins processing Slack events. It blocks until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	go b.handleEvents(ctx)
	return b.socketMode.RunContext(ctx)
}

// handleEvents dispatches incoming Socket Mode events to the appropriate handler.
func (b *Bot) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.socketMode.Events:
			if !ok {
				return
			}
			switch evt.Type {
			case socketmode.EventTypeEventsAPI:
				b.handleEventsAPI(ctx, evt)
			case socketmode.EventTypeInteractive:
				b.handleInteraction(ctx, evt)
			case socketmode.EventTypeSlashCommand:
				b.handleSlashCommand(ctx, evt)
			default:
				if evt.Request != nil {
					b.socketMode.Ack(*evt.Request)
				}
			}
		}
	}
}
