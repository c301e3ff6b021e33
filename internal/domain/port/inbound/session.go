package inbound

import (
	"context"

	"github.com/jonny/kubot/internal/domain/model"
)

// CommandRequest is one inbound slash-command invocation.
type CommandRequest struct {
	UserID    string
	UserName  string
	ChannelID string
	Text      string
}

// MessageRequest is one plain channel message from a user. Only confirmation
// and cancellation text is meaningful here; anything else is ignored when no
// pending action exists.
type MessageRequest struct {
	UserID    string
	ChannelID string
	Text      string
}

// Reply is what the transport renders back to the user.
type Reply struct {
	Result model.Result
	// Prompt is set instead of Result when a destructive intent is waiting
	// for confirmation.
	Prompt string
	// Async is set when the command was accepted onto a background job.
	Async bool
	JobID string
	// Ignore tells the transport to stay silent (non-command chatter with
	// no pending confirmation).
	Ignore bool
}

// SessionPort is the domain entry point for every user-originated event.
type SessionPort interface {
	HandleCommand(ctx context.Context, req CommandRequest) (Reply, error)
	HandleMessage(ctx context.Context, req MessageRequest) (Reply, error)
}
