package repositories

import (
	"context"
	"database/sql"

	"spportal/database"
)

// BaseRepository gives embedding repositories the store's read pool, write
// transactions and SQLite type conversions.
type BaseRepository struct {
	db *database.Database
}

// NewBaseRepository creates a new BaseRepository with database access
func NewBaseRepository(database *database.Database) *BaseRepository {
	return &BaseRepository{
		db: database,
	}
}

// ReadDB returns the read connection pool for SELECT operations
func (b *BaseRepository) ReadDB() *sql.DB {
	return b.db.ReadDB()
}

// WithTx runs fn in a write transaction bound to ctx.
func (b *BaseRepository) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return b.db.WithTx(ctx, fn)
}

// BoolToInt converts a bool to SQLite's integer representation.
func (b *BaseRepository) BoolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

// IntToBool converts SQLite's integer booleans back to bool (non-zero is true).
func (b *BaseRepository) IntToBool(i int64) bool {
	return i != 0
}
