// Package store opens the engine database for the configured driver, applies
// per-driver connection settings and runs the embedded migrations.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/filex"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/logging"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/repomanager"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Store is the explicitly owned storage handle: opened once at start-up,
// passed to every service, closed at shutdown.
type Store struct {
	DB      *sql.DB
	Manager repomanager.RepositoryManager
}

// Option customizes Open.
type Option func(*options)

type options struct {
	logger logging.Logger
}

// WithLogger logs migration progress through l.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Open connects to the database, configures the pool and migrates the schema.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	o := options{logger: logging.Discard()}
	for _, fn := range opts {
		fn(&o)
	}

	dialect, err := dbx.ParseDialect(driver)
	if err != nil {
		return nil, err
	}

	if dialect == dbx.DialectSQLite {
		if _, err := filex.EnsureParentDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	if err := configure(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	m := repomanager.NewSQLRepositoryManager(dialect,
		repomanager.WithLogger(o.logger.With("module", "migrations")))
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{DB: db, Manager: m}, nil
}

func configure(ctx context.Context, db *sql.DB, d dbx.Dialect) error {
	if d != dbx.DialectSQLite {
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(4)
		return nil
	}

	// One connection: every transaction is serialized, so read-then-write
	// sequences inside a transaction cannot interleave.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("sqlite %s: %w", p, err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}
