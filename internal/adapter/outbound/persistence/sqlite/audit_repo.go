package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/port/outbound"
)

// AuditRepo implements outbound.AuditRepository using SQLite.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo creates a new AuditRepo backed by the given store.
func NewAuditRepo(store *Store) *AuditRepo {
	return &AuditRepo{db: store.DB}
}

var _ outbound.AuditRepository = (*AuditRepo)(nil)

// Create inserts a new audit log row.
func (r *AuditRepo) Create(ctx context.Context, log model.AuditLog) error {
	meta, err := json.Marshal(log.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling audit metadata: %w", err)
	}

	const q = `INSERT INTO audit_logs
		(id, event_type, user_id, channel_id, intent_kind, description, metadata, created_at)
		VALUES (?,?,?,?,?,?,?,?)`

	_, err = r.db.ExecContext(ctx, q,
		log.ID, string(log.EventType),
		log.UserID, log.ChannelID, string(log.IntentKind),
		log.Description, string(meta), log.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}

// List returns a paginated, filtered list of audit logs.
func (r *AuditRepo) List(ctx context.Context, filter outbound.AuditFilter, page outbound.PageRequest) (outbound.PageResult[model.AuditLog], error) {
	where, args := buildAuditWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs"+where, args...).Scan(&total); err != nil {
		return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("counting audit logs: %w", err)
	}

	dir := "ASC"
	if page.Desc {
		dir = "DESC"
	}
	size := page.Size
	if size <= 0 {
		size = 20
	}
	offset := page.Page * size

	dataQ := fmt.Sprintf(`SELECT id, event_type, user_id, channel_id, intent_kind, description, metadata, created_at
		FROM audit_logs%s ORDER BY created_at %s LIMIT ? OFFSET ?`, where, dir)

	rows, err := r.db.QueryContext(ctx, dataQ, append(args, size, offset)...)
	if err != nil {
		return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("listing audit logs: %w", err)
	}
	defer rows.Close()

	var items []model.AuditLog
	for rows.Next() {
		var l model.AuditLog
		var eventType, intentKind, metaJSON string
		err := rows.Scan(
			&l.ID, &eventType, &l.UserID, &l.ChannelID,
			&intentKind, &l.Description, &metaJSON, &l.CreatedAt,
		)
		if err != nil {
			return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("scanning audit log: %w", err)
		}
		l.EventType = model.AuditEventType(eventType)
		l.IntentKind = model.IntentKind(intentKind)
		if err := json.Unmarshal([]byte(metaJSON), &l.Metadata); err != nil {
			l.Metadata = make(map[string]string)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return outbound.PageResult[model.AuditLog]{}, fmt.Errorf("iterating audit logs: %w", err)
	}

	return outbound.PageResult[model.AuditLog]{
		Items:      items,
		TotalCount: total,
		Page:       page.Page,
		Size:       size,
	}, nil
}

func buildAuditWhere(f outbound.AuditFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.EventType != "" {
		clauses = append(clauses, "event_type = ?")
		args = append(args, string(f.EventType))
	}
	if f.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.Since.UTC())
	}
	if f.Until != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, f.Until.UTC())
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
