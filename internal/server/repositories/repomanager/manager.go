package repomanager

import (
	"context"
	"database/sql"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/balances"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/collectibles"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/cooldowns"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/ownership"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/tickets"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/trades"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Dialect() dbx.Dialect
	Collectibles(db dbx.DBTX) collectibles.Repository
	Ownership(db dbx.DBTX) ownership.Repository
	Cooldowns(db dbx.DBTX) cooldowns.Repository
	Balances(db dbx.DBTX) balances.Repository
	Trades(db dbx.DBTX) trades.Repository
	Tickets(db dbx.DBTX) tickets.Repository
}
