package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"fintrack/internal/log"

	_ "modernc.org/sqlite"
)

// SQLiteRepository owns the connection pool. Reads go straight through the
// embedded *Queries; writes that need a consistent view run inside InTx.
type SQLiteRepository struct {
	*Queries
	db     *sql.DB
	logger *log.Logger
}

// dsn enables foreign keys on every pooled connection and makes BEGIN take the
// write lock immediately, so read-check-write sequences never interleave.
func dsn(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger := log.NewDefault().WithComponent(log.ComponentStorage)
	logger.Debug("Database ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		Queries: New(db),
		db:      db,
		logger:  logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// InTx runs fn inside a transaction. It commits when fn returns nil and rolls
// back otherwise; the error from fn is returned unchanged.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin transaction", err)
	}
	if err := fn(r.Queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.WarnContext(ctx, "Rollback failed", log.FieldError, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}
