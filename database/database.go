package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"spportal/logging"

	_ "modernc.org/sqlite"
)

// Config holds database configuration
type Config struct {
	Path              string
	MaxOpenConns      int
	MaxIdleConns      int
	ConnMaxLifetime   time.Duration
	ConnMaxIdleTime   time.Duration
	BusyTimeoutMs     int
	EnableForeignKeys bool
	EnableWAL         bool
}

// Database is the local probe store. Reads share a pool; writes go through a
// single connection so SQLite never sees two writers.
type Database struct {
	readDB  *sql.DB
	writeDB *sql.DB
	config  Config
	logger  *logging.Logger
}

// New opens the store at config.Path, applies connection pragmas and runs
// pending migrations.
func New(config Config, logger *logging.Logger) (*Database, error) {
	if logger == nil {
		logger = logging.Default()
	}
	existed := hasData(config.Path)

	readDB, err := openPool(config, config.MaxOpenConns, config.MaxIdleConns)
	if err != nil {
		return nil, fmt.Errorf("open read pool: %w", err)
	}
	writeDB, err := openPool(config, 1, 1)
	if err != nil {
		readDB.Close()
		return nil, fmt.Errorf("open write connection: %w", err)
	}

	d := &Database{
		readDB:  readDB,
		writeDB: writeDB,
		config:  config,
		logger:  logger.WithComponent("database"),
	}
	if err := d.configure(); err != nil {
		d.closePools()
		return nil, fmt.Errorf("configure database: %w", err)
	}
	if err := d.migrate(migrationFiles); err != nil {
		d.closePools()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	d.logger.Database("Probe store ready",
		"path", config.Path,
		"existed", existed,
		"wal_mode", config.EnableWAL,
		"read_connections", config.MaxOpenConns)
	return d, nil
}

func openPool(config Config, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("sqlite", config.dsn())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)
	return db, nil
}

func (c Config) dsn() string {
	params := []string{fmt.Sprintf("_busy_timeout=%d", c.BusyTimeoutMs)}
	if c.EnableWAL {
		params = append(params, "_journal_mode=WAL")
	}
	if c.EnableForeignKeys {
		params = append(params, "_foreign_keys=on")
	}
	params = append(params, "_synchronous=normal", "_temp_store=memory")
	return "file:" + c.Path + "?" + strings.Join(params, "&")
}

// pragmas are applied to every pooled connection the store opens up front.
func (c Config) pragmas() []string {
	out := []string{fmt.Sprintf("PRAGMA busy_timeout = %d", c.BusyTimeoutMs)}
	if c.EnableForeignKeys {
		out = append(out, "PRAGMA foreign_keys = ON")
	}
	return out
}

func (d *Database) configure() error {
	for _, pool := range []struct {
		name string
		db   *sql.DB
	}{{"read", d.readDB}, {"write", d.writeDB}} {
		if err := pool.db.Ping(); err != nil {
			return fmt.Errorf("ping %s connection: %w", pool.name, err)
		}
		for _, stmt := range d.config.pragmas() {
			if _, err := pool.db.Exec(stmt); err != nil {
				return fmt.Errorf("%s on %s connection: %w", stmt, pool.name, err)
			}
		}
		if !d.config.EnableWAL {
			continue
		}
		var mode string
		if err := pool.db.QueryRow("PRAGMA journal_mode=WAL").Scan(&mode); err != nil {
			return fmt.Errorf("enable WAL on %s connection: %w", pool.name, err)
		}
		if mode != "wal" {
			d.logger.Warn("WAL mode not enabled", "connection", pool.name, "journal_mode", mode)
		}
	}
	return nil
}

// ReadDB returns the read connection pool
func (d *Database) ReadDB() *sql.DB {
	return d.readDB
}

// WithTx runs fn in a transaction on the write connection. fn's error rolls it back.
func (d *Database) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := d.writeDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			d.logger.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// PoolStats is a snapshot of one connection pool.
type PoolStats struct {
	OpenConnections int    `json:"open_connections"`
	InUse           int    `json:"in_use"`
	Idle            int    `json:"idle"`
	WaitCount       int64  `json:"wait_count"`
	WaitDuration    string `json:"wait_duration"`
	MaxOpenConns    int    `json:"max_open_conns"`
}

// HealthReport describes store connectivity for the health endpoint.
type HealthReport struct {
	Path  string    `json:"path"`
	Read  PoolStats `json:"read_pool"`
	Write PoolStats `json:"write_pool"`
}

// Health pings both pools and reports their statistics.
func (d *Database) Health(ctx context.Context) (*HealthReport, error) {
	if err := d.readDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("read pool ping: %w", err)
	}
	if err := d.writeDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("write connection ping: %w", err)
	}
	return &HealthReport{
		Path:  d.config.Path,
		Read:  poolStats(d.readDB, d.config.MaxOpenConns),
		Write: poolStats(d.writeDB, 1),
	}, nil
}

func poolStats(db *sql.DB, maxOpen int) PoolStats {
	s := db.Stats()
	return PoolStats{
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
		WaitCount:       s.WaitCount,
		WaitDuration:    s.WaitDuration.String(),
		MaxOpenConns:    maxOpen,
	}
}

// Close checkpoints the WAL and closes both pools.
func (d *Database) Close() error {
	d.logger.Database("Closing probe store")
	if d.config.EnableWAL {
		if _, err := d.writeDB.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			d.logger.Warn("Failed to checkpoint WAL", "error", err)
		}
	}
	return d.closePools()
}

func (d *Database) closePools() error {
	var errs []error
	if err := d.readDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("read pool: %w", err))
	}
	if err := d.writeDB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("write connection: %w", err))
	}
	return errors.Join(errs...)
}

func hasData(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
