package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HandityaGilang/Isvara-Inventory-Manager2/internal/domain"
)

type LogRepository struct {
	pool *pgxpool.Pool
}

const insertLogSQL = `
	INSERT INTO activity_logs (id, "timestamp", "date", user_name, user_role, action, item, old_val, new_val, source)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

// List returns at most limit entries, newest first. The remote table is not
// trimmed.
func (r *LogRepository) List(ctx context.Context, limit int) ([]domain.ActivityLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, "timestamp", "date", user_name, user_role, action, item, old_val, new_val, source
		FROM activity_logs
		ORDER BY "timestamp" DESC
		LIMIT $1
	`, normalizeLimit(limit))
	if err != nil {
		return nil, repoErr("list activity log", err)
	}
	defer rows.Close()

	entries := make([]domain.ActivityLogEntry, 0)
	for rows.Next() {
		entry, err := scanLogEntry(rows)
		if err != nil {
			return nil, repoErr("scan activity log", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, repoErr("iterate activity log", err)
	}
	return entries, nil
}

func (r *LogRepository) Add(ctx context.Context, entry domain.ActivityLogEntry) (domain.ActivityLogEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if _, err := r.pool.Exec(ctx, insertLogSQL, logArgs(entry)...); err != nil {
		return domain.ActivityLogEntry{}, repoErr("add activity log", err)
	}
	return entry, nil
}

func (r *LogRepository) Restore(ctx context.Context, entries []domain.ActivityLogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, entry := range entries {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		batch.Queue(insertLogSQL+` ON CONFLICT (id) DO NOTHING`, logArgs(entry)...)
	}
	return repoErr("restore activity log", sendBatch(ctx, r.pool, batch))
}

func logArgs(e domain.ActivityLogEntry) []any {
	return []any{
		e.ID,
		e.Timestamp,
		e.Date,
		e.User,
		string(e.Role),
		e.Action,
		e.Item,
		string(e.OldVal),
		string(e.NewVal),
		e.Source,
	}
}

func scanLogEntry(row pgx.Row) (domain.ActivityLogEntry, error) {
	var (
		entry          domain.ActivityLogEntry
		role           string
		oldVal, newVal string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.Timestamp,
		&entry.Date,
		&entry.User,
		&role,
		&entry.Action,
		&entry.Item,
		&oldVal,
		&newVal,
		&entry.Source,
	); err != nil {
		return domain.ActivityLogEntry{}, err
	}
	entry.Role = domain.Role(role)
	entry.OldVal = domain.LogValue(oldVal)
	entry.NewVal = domain.LogValue(newVal)
	return entry, nil
}
