// Package services implements the engine operations. Every public operation
// runs as one serializable transaction (retried on serialization conflicts);
// the unexported *Tx helpers take a transactional handle so that one
// operation can compose several of them atomically.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/logging"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/config"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/dice"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/metrics"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/repomanager"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/timex"
)

type options struct {
	logger  logging.Logger
	clock   timex.Clock
	dice    dice.Source
	metrics *metrics.Recorder
}

// Option customizes a service.
type Option func(*options)

// WithLogger sets the parent logger; each service derives a module logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock replaces the wall clock.
func WithClock(c timex.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithDice replaces the random source used for draws and rolls.
func WithDice(src dice.Source) Option {
	return func(o *options) { o.dice = src }
}

// WithMetrics sets the operation counter.
func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) { o.metrics = r }
}

func buildOptions(opts []Option) options {
	o := options{
		logger: logging.Discard(),
		clock:  timex.SystemClock,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.dice == nil {
		src, err := dice.NewSeededSource()
		if err != nil {
			src = dice.NewSource(uint64(time.Now().UnixNano()))
		}
		o.dice = src
	}
	return o
}

// base carries what every service needs.
type base struct {
	db      *sql.DB
	repos   repomanager.RepositoryManager
	cfg     *config.Config
	logger  logging.Logger
	clock   timex.Clock
	dice    dice.Source
	metrics *metrics.Recorder
}

func newBase(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, module string, o options) base {
	return base{
		db:      db,
		repos:   rm,
		cfg:     cfg,
		logger:  o.logger.With("module", module),
		clock:   o.clock,
		dice:    o.dice,
		metrics: o.metrics,
	}
}

func (b *base) now() time.Time {
	return b.clock().UTC()
}

// run executes fn in one transaction and converts the result for callers.
func (b *base) run(ctx context.Context, op string, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	err := dbx.WithTxRetry(ctx, b.db, b.repos.Dialect().TxOptions(), b.cfg.TxRetries, fn)
	err = b.check(ctx, op, err)
	b.metrics.Observe(op, err)
	return err
}

// check passes domain failures through and turns everything else into
// common.ErrorInternal, logging the cause.
func (b *base) check(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if common.IsDomain(err) {
		b.logger.Debug(ctx, "operation rejected", "op", op, "error", err)
		return err
	}
	b.logger.Error(ctx, "operation failed", "op", op, "error", err)
	return fmt.Errorf("%w: %s: %w", common.ErrorInternal, op, err)
}
