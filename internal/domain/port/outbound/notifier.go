package outbound

import (
	"context"

	"github.com/jonny/kubot/internal/domain/model"
)

// Notifier delivers engine-originated messages back to the chat transport.
// Used for async job completion and file uploads; direct command replies go
// through the inbound adapter's own response path.
type Notifier interface {
	SendResult(ctx context.Context, channelID string, job model.AsyncJob) error
	SendFile(ctx context.Context, channelID, filename string, content []byte) error
}
