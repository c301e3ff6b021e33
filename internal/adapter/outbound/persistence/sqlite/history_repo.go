package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/port/outbound"
)

// HistoryRepo implements outbound.HistoryRepository using SQLite.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo creates a new HistoryRepo backed by the given store.
func NewHistoryRepo(store *Store) *HistoryRepo {
	return &HistoryRepo{db: store.DB}
}

var _ outbound.HistoryRepository = (*HistoryRepo)(nil)

// Create inserts a completed command row.
func (r *HistoryRepo) Create(ctx context.Context, entry model.HistoryEntry) error {
	const q = `INSERT INTO command_history
		(id, user_id, channel_id, command, kind, status, summary, created_at)
		VALUES (?,?,?,?,?,?,?,?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.ID, entry.UserID, entry.ChannelID,
		entry.Command, string(entry.Kind), string(entry.Status),
		entry.Summary, entry.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// List returns a paginated, filtered slice of command history.
func (r *HistoryRepo) List(ctx context.Context, filter outbound.HistoryFilter, page outbound.PageRequest) (outbound.PageResult[model.HistoryEntry], error) {
	where, args := buildHistoryWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM command_history"+where, args...).Scan(&total); err != nil {
		return outbound.PageResult[model.HistoryEntry]{}, fmt.Errorf("counting history: %w", err)
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

	dataQ := fmt.Sprintf(`SELECT id, user_id, channel_id, command, kind, status, summary, created_at
		FROM command_history%s ORDER BY created_at %s LIMIT ? OFFSET ?`, where, dir)

	rows, err := r.db.QueryContext(ctx, dataQ, append(args, size, offset)...)
	if err != nil {
		return outbound.PageResult[model.HistoryEntry]{}, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var items []model.HistoryEntry
	for rows.Next() {
		var e model.HistoryEntry
		var kind, status string
		if err := rows.Scan(&e.ID, &e.UserID, &e.ChannelID, &e.Command, &kind, &status, &e.Summary, &e.CreatedAt); err != nil {
			return outbound.PageResult[model.HistoryEntry]{}, fmt.Errorf("scanning history entry: %w", err)
		}
		e.Kind = model.IntentKind(kind)
		e.Status = model.ResultStatus(status)
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return outbound.PageResult[model.HistoryEntry]{}, fmt.Errorf("iterating history: %w", err)
	}

	return outbound.PageResult[model.HistoryEntry]{
		Items:      items,
		TotalCount: total,
		Page:       page.Page,
		Size:       size,
	}, nil
}

func buildHistoryWhere(f outbound.HistoryFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(f.Kind))
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
