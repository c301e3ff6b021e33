package outbound

import (
	"context"
	"time"

	"github.com/jonny/kubot/internal/domain/model"
)

type PageRequest struct {
	Page int
	Size int
	Desc bool
}

type PageResult[T any] struct {
	Items      []T
	TotalCount int64
	Page       int
	Size       int
}

type HistoryFilter struct {
	UserID string
	Kind   model.IntentKind
	Since  *time.Time
	Until  *time.Time
}

type AuditFilter struct {
	UserID    string
	EventType model.AuditEventType
	Since     *time.Time
	Until     *time.Time
}

type HistoryRepository interface {
	Create(ctx context.Context, entry model.HistoryEntry) error
	List(ctx context.Context, filter HistoryFilter, page PageRequest) (PageResult[model.HistoryEntry], error)
}

type AuditRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, filter AuditFilter, page PageRequest) (PageResult[model.AuditLog], error)
}
