package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/yigit/gradebook/internal/pkg/logger"
)

// Options configures the SQLite handle
type Options struct {
	Path          string
	MaxOpenConns  int
	BusyTimeoutMS int
}

// DB wraps the shared database handle
type DB struct {
	*sql.DB
	path string
}

// Open opens (creating if needed) the single-file database
func Open(opts Options) (*DB, error) {
	if opts.Path != ":memory:" {
		if dir := filepath.Dir(opts.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	if opts.MaxOpenConns < 1 {
		opts.MaxOpenConns = 1
	}
	if opts.BusyTimeoutMS <= 0 {
		opts.BusyTimeoutMS = 5000
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on&_journal_mode=WAL&_txlock=immediate",
		opts.Path, opts.BusyTimeoutMS)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	logger.Info().Str("path", opts.Path).Int("maxOpenConns", opts.MaxOpenConns).Msg("Database opened")
	return &DB{DB: sqlDB, path: opts.Path}, nil
}

// Path returns the database file location
func (db *DB) Path() string {
	return db.path
}

// Close closes the handle
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

// TransactionFn is a function that executes within a transaction
type TransactionFn func(ctx context.Context, tx *sql.Tx) error

// WithTransaction runs fn inside a transaction, rolling back on error or panic
func (db *DB) WithTransaction(ctx context.Context, fn TransactionFn) error {
	_, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
			return fmt.Errorf("error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
