package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/port/inbound"
	"github.com/jonny/kubot/internal/domain/port/outbound"
)

// Repositories groups the persistence dependencies for the session engine.
type Repositories struct {
	History outbound.HistoryRepository
	Audits  outbound.AuditRepository
}

// ConfirmationPolicy is the process-boundary configuration for the
// confirmation flow: the literal token users must type, how strictly it is
// matched, and how long a prompt stays live.
type ConfirmationPolicy struct {
	Token         string
	CaseSensitive bool
	TTL           time.Duration
}

// Session is the engine behind every inbound user event. It gates
// authorization, parses command text, runs the confirmation flow for
// destructive intents and hands executable intents to the dispatcher.
type Session struct {
	authorizer  *Authorizer
	interpreter *Interpreter
	pending     *PendingStore
	dispatcher  *Dispatcher
	repos       Repositories
	policy      ConfirmationPolicy
}

func NewSession(
	authorizer *Authorizer,
	interpreter *Interpreter,
	pending *PendingStore,
	dispatcher *Dispatcher,
	repos Repositories,
	policy ConfirmationPolicy,
) *Session {
	return &Session{
		authorizer:  authorizer,
		interpreter: interpreter,
		pending:     pending,
		dispatcher:  dispatcher,
		repos:       repos,
		policy:      policy,
	}
}

var _ inbound.SessionPort = (*Session)(nil)

// HandleCommand processes one slash-command invocation.
func (s *Session) HandleCommand(ctx context.Context, req inbound.CommandRequest) (inbound.Reply, error) {
	if !s.authorizer.Authorize(req.UserID) {
		// Uniform rejection: no hint whether the command itself exists.
		s.audit(ctx, model.NewAuditLog(model.AuditCommandDenied, req.UserID, req.ChannelID, "unauthorized command"))
		return inbound.Reply{Result: model.Failure(model.ErrNotAuthorized, "you are not authorized to use this bot")}, nil
	}

	s.audit(ctx, model.NewAuditLog(model.AuditCommandReceived, req.UserID, req.ChannelID, req.Text))

	intent, err := s.interpreter.Parse(req.Text)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return inbound.Reply{Result: model.Failure(model.ErrParse, pe.Usage)}, nil
		}
		return inbound.Reply{}, fmt.Errorf("parse command: %w", err)
	}

	if intent.Kind == model.IntentCancel {
		return s.cancel(ctx, req.UserID, req.ChannelID), nil
	}

	if intent.Destructive() {
		action := model.NewPendingAction(req.UserID, req.ChannelID, intent, s.policy.TTL)
		s.pending.Put(action)
		s.audit(ctx, model.NewAuditLog(model.AuditConfirmationRequested, req.UserID, req.ChannelID, intent.Describe()).
			WithIntentKind(intent.Kind))
		prompt := fmt.Sprintf(
			"About to %s.\nReply `%s` within %s to proceed, or `cancel` to abort.",
			intent.Describe(), s.policy.Token, s.policy.TTL,
		)
		return inbound.Reply{Prompt: prompt}, nil
	}

	if intent.Async() {
		jobID := s.dispatcher.ExecuteAsync(req.UserID, req.ChannelID, intent)
		s.audit(ctx, model.NewAuditLog(model.AuditJobStarted, req.UserID, req.ChannelID, intent.Describe()).
			WithIntentKind(intent.Kind).WithMetadata("job_id", jobID))
		return inbound.Reply{Async: true, JobID: jobID}, nil
	}

	res := s.dispatcher.Execute(ctx, req.UserID, req.ChannelID, intent)
	s.record(ctx, req.UserID, req.ChannelID, req.Text, intent, res)
	return inbound.Reply{Result: res}, nil
}

// HandleMessage processes a plain channel message. Only confirmation and
// cancellation text matters; anything else is ignored.
func (s *Session) HandleMessage(ctx context.Context, req inbound.MessageRequest) (inbound.Reply, error) {
	if !s.authorizer.Authorize(req.UserID) {
		return inbound.Reply{Ignore: true}, nil
	}

	text := strings.TrimSpace(req.Text)
	switch {
	case strings.EqualFold(text, "cancel"):
		return s.cancel(ctx, req.UserID, req.ChannelID), nil
	case strings.EqualFold(text, s.policy.Token):
		return s.confirm(ctx, req.UserID, req.ChannelID, text)
	default:
		return inbound.Reply{Ignore: true}, nil
	}
}

// confirm resolves a confirmation attempt. The pending action is taken
// before the token is matched, so a near-miss token still consumes it and a
// fresh prompt is required to try again.
func (s *Session) confirm(ctx context.Context, userID, channelID, token string) (inbound.Reply, error) {
	action, ok := s.pending.Take(userID, channelID)
	if !ok {
		return inbound.Reply{Result: model.Failure(model.ErrNoPendingAction, "no matching pending action")}, nil
	}

	if s.policy.CaseSensitive && token != s.policy.Token {
		s.audit(ctx, model.NewAuditLog(model.AuditConfirmationRejected, userID, channelID,
			fmt.Sprintf("token mismatch for: %s", action.Intent.Describe())).WithIntentKind(action.Intent.Kind))
		return inbound.Reply{Result: model.Failure(model.ErrConfirmationMismatch,
			fmt.Sprintf("confirmation did not match %q; the action was discarded, issue the command again", s.policy.Token))}, nil
	}

	s.audit(ctx, model.NewAuditLog(model.AuditConfirmationAccepted, userID, channelID, action.Intent.Describe()).
		WithIntentKind(action.Intent.Kind))

	// The captured intent executes as prompted; the confirmation text is
	// never re-parsed.
	res := s.dispatcher.Execute(ctx, userID, channelID, action.Intent)
	s.record(ctx, userID, channelID, action.Intent.Describe(), action.Intent, res)
	return inbound.Reply{Result: res}, nil
}

func (s *Session) cancel(ctx context.Context, userID, channelID string) inbound.Reply {
	action, ok := s.pending.Take(userID, channelID)
	if !ok {
		return inbound.Reply{Result: model.Failure(model.ErrNoPendingAction, "nothing to cancel")}
	}
	s.audit(ctx, model.NewAuditLog(model.AuditConfirmationCancelled, userID, channelID, action.Intent.Describe()).
		WithIntentKind(action.Intent.Kind))
	return inbound.Reply{Result: model.Success(fmt.Sprintf("cancelled: %s", action.Intent.Describe()))}
}

func (s *Session) record(ctx context.Context, userID, channelID, command string, intent model.Intent, res model.Result) {
	entry := model.NewHistoryEntry(userID, channelID, command, intent.Kind, res)
	_ = s.repos.History.Create(ctx, entry)

	event := model.AuditIntentExecuted
	if res.Status == model.ResultFailure {
		event = model.AuditIntentFailed
	}
	s.audit(ctx, model.NewAuditLog(event, userID, channelID, res.Summary()).WithIntentKind(intent.Kind))
}

// audit failures are logged by the repository layer; command handling never
// fails on a missed audit row.
func (s *Session) audit(ctx context.Context, log model.AuditLog) {
	_ = s.repos.Audits.Create(ctx, log)
}
