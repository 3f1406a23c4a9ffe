// Package repomanager provides a concrete RepositoryManager for the SQL
// dialects the engine runs on, wiring together repository constructors and
// database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/logging"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/migrations"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/balances"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/collectibles"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/cooldowns"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/ownership"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/tickets"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/trades"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends repository implementations bound to a DBTX,
// rebinding placeholders for its dialect, and exposes a schema migration hook.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
	logger  logging.Logger
}

// Option customizes a SQLRepositoryManager.
type Option func(*SQLRepositoryManager)

// WithLogger routes migration progress to l instead of dropping it.
func WithLogger(l logging.Logger) Option {
	return func(m *SQLRepositoryManager) { m.logger = l }
}

// NewSQLRepositoryManager constructs a RepositoryManager for dialect d.
func NewSQLRepositoryManager(d dbx.Dialect, opts ...Option) RepositoryManager {
	m := &SQLRepositoryManager{dialect: d, logger: logging.Discard()}
	for _, fn := range opts {
		fn(m)
	}
	return m
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

// Collectibles returns a collectibles.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Collectibles(db dbx.DBTX) collectibles.Repository {
	return collectibles.NewSQLRepository(m.dialect.Bind(db))
}

// Ownership returns an ownership.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Ownership(db dbx.DBTX) ownership.Repository {
	return ownership.NewSQLRepository(m.dialect.Bind(db))
}

// Cooldowns returns a cooldowns.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Cooldowns(db dbx.DBTX) cooldowns.Repository {
	return cooldowns.NewSQLRepository(m.dialect.Bind(db))
}

// Balances returns a balances.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Balances(db dbx.DBTX) balances.Repository {
	return balances.NewSQLRepository(m.dialect.Bind(db))
}

// Trades returns a trades.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Trades(db dbx.DBTX) trades.Repository {
	return trades.NewSQLRepository(m.dialect.Bind(db))
}

// Tickets returns a tickets.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Tickets(db dbx.DBTX) tickets.Repository {
	return tickets.NewSQLRepository(m.dialect.Bind(db))
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations of the manager's
// dialect and runs them against the provided database connection.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{ctx: ctx, l: m.logger})
	dialect := m.dialect.GooseDialect()
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, migrations.Dir(dialect)); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// gooseLogger adapts logging.Logger to goose's printf-style logger.
type gooseLogger struct {
	ctx context.Context
	l   logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.l.Info(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.l.Error(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}
