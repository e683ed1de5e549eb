package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"spportal/database"
	"spportal/domain/contracts"
	"spportal/domain/portal"
)

// Fixed-width UTC timestamps keep lexical and chronological order identical.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteProbeHistoryRepository stores availability probe records in SQLite.
type SQLiteProbeHistoryRepository struct {
	*BaseRepository
}

// NewProbeHistoryRepository creates a probe history repository backed by database.
func NewProbeHistoryRepository(database *database.Database) contracts.ProbeHistoryRepository {
	return &SQLiteProbeHistoryRepository{
		BaseRepository: NewBaseRepository(database),
	}
}

// Record persists one probe record.
func (r *SQLiteProbeHistoryRepository) Record(ctx context.Context, record portal.ProbeRecord) error {
	return r.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO probe_history (id, endpoint, success, error_code, error_message, duration_ms, checked_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			record.ID,
			record.Endpoint,
			r.BoolToInt(record.Success),
			record.ErrorCode,
			record.ErrorMessage,
			record.Duration.Milliseconds(),
			record.CheckedAt.UTC().Format(timestampLayout),
		)
		if err != nil {
			return fmt.Errorf("insert probe record: %w", err)
		}
		return nil
	})
}

// Recent returns up to limit records, newest first.
func (r *SQLiteProbeHistoryRepository) Recent(ctx context.Context, limit int) ([]portal.ProbeRecord, error) {
	if limit <= 0 {
		return nil, contracts.ErrInvalidLimit
	}

	rows, err := r.ReadDB().QueryContext(ctx, `
		SELECT id, endpoint, success, error_code, error_message, duration_ms, checked_at
		FROM probe_history
		ORDER BY checked_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query probe history: %w", err)
	}
	defer rows.Close()

	records := make([]portal.ProbeRecord, 0, limit)
	for rows.Next() {
		var (
			rec        portal.ProbeRecord
			success    int64
			durationMs int64
			checkedAt  string
		)
		if err := rows.Scan(&rec.ID, &rec.Endpoint, &success, &rec.ErrorCode, &rec.ErrorMessage, &durationMs, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan probe record: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, checkedAt)
		if err != nil {
			return nil, ErrRecordDecode{Table: "probe_history", ID: rec.ID, Err: err}
		}
		rec.Success = r.IntToBool(success)
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		rec.CheckedAt = ts
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate probe history: %w", err)
	}
	return records, nil
}

// Prune deletes records checked before cutoff and returns how many were removed.
func (r *SQLiteProbeHistoryRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := r.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM probe_history WHERE checked_at < ?`, cutoff.UTC().Format(timestampLayout))
		if err != nil {
			return fmt.Errorf("prune probe history: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}
