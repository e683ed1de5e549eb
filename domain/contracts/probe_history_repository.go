package contracts

import (
	"context"
	"time"

	"spportal/domain/portal"
)

// ProbeHistoryRepository defines persistence for availability probe records.
type ProbeHistoryRepository interface {
	// Record persists one probe record.
	Record(ctx context.Context, record portal.ProbeRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]portal.ProbeRecord, error)

	// Prune deletes records checked before cutoff and returns how many were removed.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}
