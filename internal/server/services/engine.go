package services

import (
	"database/sql"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/config"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/repomanager"
)

// Engine bundles the services over one storage handle.
type Engine struct {
	Catalog   *CatalogService
	Ownership *OwnershipService
	Ledger    *LedgerService
	Cooldowns *CooldownService
	Contest   *ContestService
	Exchange  *ExchangeService
}

// NewEngine wires every service to db. Options apply to all of them, so
// they share one clock, dice source, logger and metrics recorder.
func NewEngine(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, opts ...Option) *Engine {
	o := buildOptions(opts)
	shared := []Option{
		WithLogger(o.logger),
		WithClock(o.clock),
		WithDice(o.dice),
		WithMetrics(o.metrics),
	}

	e := &Engine{}
	e.Catalog = NewCatalogService(db, rm, cfg, shared...)
	e.Ownership = NewOwnershipService(db, rm, cfg, shared...)
	e.Cooldowns = NewCooldownService(db, rm, cfg, shared...)
	e.Ledger = NewLedgerService(db, rm, cfg, e.Cooldowns, shared...)
	e.Contest = NewContestService(db, rm, cfg, e.Catalog, e.Ownership, e.Cooldowns, shared...)
	e.Exchange = NewExchangeService(db, rm, cfg, e.Ownership, e.Ledger, shared...)
	return e
}
