package slackbot

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/jonny/kubot/internal/adapter/inbound/slackbot/template"
	"github.com/jonny/kubot/internal/domain/port/inbound"
)

// handleEventsAPI processes Slack Events API payloads (message events).
func (b *Bot) handleEventsAPI(ctx context.Context, evt socketmode.Event) {
	b.socketMode.Ack(*evt.Request)

	eventsPayload, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}

	innerEvent := eventsPayload.InnerEvent
	switch ev := innerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		b.processMessageEvent(ctx, ev)
	}
}

// processMessageEvent routes a plain channel message to the session engine.
// Only confirmation tokens and cancellations matter here; the engine ignores
// everything else.
func (b *Bot) processMessageEvent(ctx context.Context, ev *slackevents.MessageEvent) {
	// Ignore bot messages to prevent loops.
	if ev.BotID != "" || ev.SubType == "bot_message" {
		return
	}
	if !b.allowedChannel(ev.Channel) {
		return
	}

	reply, err := b.session.HandleMessage(ctx, inbound.MessageRequest{
		UserID:    ev.User,
		ChannelID: ev.Channel,
		Text:      ev.Text,
	})
	if err != nil {
		b.logger.Error("handling message", "user", ev.User, "error", err)
		return
	}

	b.renderReply(ctx, ev.Channel, reply)
}

// handleInteraction processes interactive component payloads (button clicks).
// Confirm and cancel buttons carry the literal text a typed reply would have,
// so clicks and typed replies take the same path through the engine.
func (b *Bot) handleInteraction(ctx context.Context, evt socketmode.Event) {
	b.socketMode.Ack(*evt.Request)

	callback, ok := evt.Data.(slackapi.InteractionCallback)
	if !ok {
		return
	}

	for _, action := range callback.ActionCallback.BlockActions {
		switch action.ActionID {
		case template.ActionIDConfirm, template.ActionIDCancel:
			b.processConfirmClick(ctx, callback, action)
		}
	}
}

func (b *Bot) processConfirmClick(ctx context.Context, callback slackapi.InteractionCallback, action *slackapi.BlockAction) {
	reply, err := b.session.HandleMessage(ctx, inbound.MessageRequest{
		UserID:    callback.User.ID,
		ChannelID: callback.Channel.ID,
		Text:      action.Value,
	})
	if err != nil {
		b.logger.Error("handling confirmation click", "user", callback.User.ID, "error", err)
		return
	}

	b.renderReply(ctx, callback.Channel.ID, reply)
}

// handleSlashCommand processes /kubot slash commands.
func (b *Bot) handleSlashCommand(ctx context.Context, evt socketmode.Event) {
	cmd, ok := evt.Data.(slackapi.SlashCommand)
	if !ok {
		b.socketMode.Ack(*evt.Request)
		return
	}
	// Ack first; Slack retries the command if no response arrives in 3s.
	b.socketMode.Ack(*evt.Request)

	if !b.allowedChannel(cmd.ChannelID) {
		b.postText(ctx, cmd.ChannelID, "This bot only operates in its configured channel.")
		return
	}

	reply, err := b.session.HandleCommand(ctx, inbound.CommandRequest{
		UserID:    cmd.UserID,
		UserName:  cmd.UserName,
		ChannelID: cmd.ChannelID,
		Text:      cmd.Text,
	})
	if err != nil {
		b.logger.Error("handling command", "user", cmd.UserID, "error", err)
		b.postText(ctx, cmd.ChannelID, ":x: Internal error, see bot logs.")
		return
	}

	b.renderReply(ctx, cmd.ChannelID, reply)
}

// renderReply posts the engine's reply back to the channel.
func (b *Bot) renderReply(ctx context.Context, channelID string, reply inbound.Reply) {
	switch {
	case reply.Ignore:
		return
	case reply.Prompt != "":
		blocks := template.BuildConfirmBlocks(reply.Prompt, b.config.ConfirmToken)
		_, _, err := b.client.PostMessageContext(ctx, channelID,
			slackapi.MsgOptionBlocks(blocks...),
			slackapi.MsgOptionText(reply.Prompt, false),
		)
		if err != nil {
			b.logger.Error("posting confirmation prompt", "error", err)
		}
	case reply.Async:
		b.postText(ctx, channelID,
			fmt.Sprintf(":hourglass_flowing_sand: Accepted as job `%s`. You will be notified when it finishes.", reply.JobID))
	default:
		blocks := template.BuildResultBlocks(reply.Result)
		_, _, err := b.client.PostMessageContext(ctx, channelID,
			slackapi.MsgOptionBlocks(blocks...),
			slackapi.MsgOptionText(reply.Result.Summary(), false),
		)
		if err != nil {
			b.logger.Error("posting result", "error", err)
		}
	}
}

func (b *Bot) postText(ctx context.Context, channelID, text string) {
	_, _, err := b.client.PostMessageContext(ctx, channelID,
		slackapi.MsgOptionText(text, false),
	)
	if err != nil {
		b.logger.Error("posting message", "error", err)
	}
}

func (b *Bot) allowedChannel(channelID string) bool {
	return b.config.Channel == "" || b.config.Channel == channelID
}
