package notification

import (
	"context"
	"log/slog"

	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/port/outbound"
)

// NoopNotifier logs notifications instead of sending them.
// Used in local development when Slack is not configured.
type NoopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier creates a new NoopNotifier.
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

var _ outbound.Notifier = (*NoopNotifier)(nil)

func (n *NoopNotifier) SendResult(_ context.Context, channelID string, job model.AsyncJob) error {
	n.logger.Info("noop: job result",
		"channelID", channelID,
		"jobID", job.ID,
		"status", job.Status,
		"summary", job.Result.Summary(),
	)
	return nil
}

func (n *NoopNotifier) SendFile(_ context.Context, channelID, filename string, content []byte) error {
	n.logger.Info("noop: file upload",
		"channelID", channelID,
		"filename", filename,
		"bytes", len(content),
	)
	return nil
}
