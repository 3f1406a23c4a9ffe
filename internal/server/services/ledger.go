package services

import (
	"context"
	"database/sql"
	"math"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/config"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/dice"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/repomanager"
)

// LedgerService keeps per-user currency balances. Balances never go below
// zero: a debit larger than the balance fails with ErrInsufficientFunds.
type LedgerService struct {
	base
	cooldowns *CooldownService
}

func NewLedgerService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, cooldowns *CooldownService, opts ...Option) *LedgerService {
	return &LedgerService{
		base:      newBase(db, rm, cfg, "ledger", buildOptions(opts)),
		cooldowns: cooldowns,
	}
}

// Balance returns the user's balance, 0 when the user has none.
func (s *LedgerService) Balance(ctx context.Context, userID string) (int64, error) {
	var amount int64
	err := s.run(ctx, "balance", func(ctx context.Context, tx dbx.DBTX) (err error) {
		amount, err = s.repos.Balances(tx).Get(ctx, userID)
		return err
	})
	return amount, err
}

// Credit adds a non-negative amount.
func (s *LedgerService) Credit(ctx context.Context, userID string, amount int64) error {
	if amount < 0 {
		return common.ErrInvalidAmount
	}
	return s.run(ctx, "credit", func(ctx context.Context, tx dbx.DBTX) error {
		return s.creditTx(ctx, tx, userID, amount)
	})
}

// Debit removes a non-negative amount if the balance covers it.
func (s *LedgerService) Debit(ctx context.Context, userID string, amount int64) error {
	if amount < 0 {
		return common.ErrInvalidAmount
	}
	return s.run(ctx, "debit", func(ctx context.Context, tx dbx.DBTX) error {
		return s.debitTx(ctx, tx, userID, amount)
	})
}

// Adjust applies a signed administrative correction and returns the new
// balance.
func (s *LedgerService) Adjust(ctx context.Context, userID string, delta int64) (int64, error) {
	if delta == math.MinInt64 {
		return 0, common.ErrInvalidAmount
	}
	var balance int64
	err := s.run(ctx, "adjust", func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		if delta >= 0 {
			err = s.creditTx(ctx, tx, userID, delta)
		} else {
			err = s.debitTx(ctx, tx, userID, -delta)
		}
		if err != nil {
			return err
		}
		balance, err = s.repos.Balances(tx).Get(ctx, userID)
		return err
	})
	return balance, err
}

// ResetAll sets every balance to 0.
func (s *LedgerService) ResetAll(ctx context.Context) error {
	return s.run(ctx, "reset_balances_all", func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Balances(tx).ResetAll(ctx)
	})
}

// Rank returns the richest users. A non-positive limit uses the configured
// default.
func (s *LedgerService) Rank(ctx context.Context, limit int) ([]models.RankEntry, error) {
	if limit <= 0 {
		limit = s.cfg.RankLimit
	}
	var entries []models.RankEntry
	err := s.run(ctx, "rank", func(ctx context.Context, tx dbx.DBTX) (err error) {
		entries, err = s.repos.Balances(tx).Top(ctx, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Collect credits a random amount from the configured range when the
// collection gate is open, and closes the gate.
func (s *LedgerService) Collect(ctx context.Context, userID string) (int64, error) {
	var amount int64
	err := s.run(ctx, "collect", func(ctx context.Context, tx dbx.DBTX) error {
		now := s.now()
		if err := s.cooldowns.canCollectTx(ctx, tx, userID, now); err != nil {
			return err
		}
		amount = dice.Between(s.dice, s.cfg.CollectMin, s.cfg.CollectMax)
		if err := s.creditTx(ctx, tx, userID, amount); err != nil {
			return err
		}
		return s.repos.Cooldowns(tx).SetLastCollect(ctx, userID, now)
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "currency collected", "user", userID, "amount", amount)
	return amount, nil
}

// creditTx and debitTx accept only non-negative amounts, so the floor on
// balances holds whatever the caller.
func (s *LedgerService) creditTx(ctx context.Context, tx dbx.DBTX, userID string, amount int64) error {
	if amount < 0 {
		return common.ErrInvalidAmount
	}
	return s.repos.Balances(tx).Credit(ctx, userID, amount, s.now())
}

func (s *LedgerService) debitTx(ctx context.Context, tx dbx.DBTX, userID string, amount int64) error {
	if amount < 0 {
		return common.ErrInvalidAmount
	}
	if amount == 0 {
		return nil
	}
	ok, err := s.repos.Balances(tx).Debit(ctx, userID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return common.ErrInsufficientFunds
	}
	return nil
}
