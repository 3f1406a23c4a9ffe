package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/config"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/repomanager"
)

// ExchangeService trades one collectible for currency between two users.
// An offer reserves nothing; Confirm re-validates everything in the same
// transaction that moves the collectible and the currency.
type ExchangeService struct {
	base
	ownership *OwnershipService
	ledger    *LedgerService
}

func NewExchangeService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config,
	ownership *OwnershipService, ledger *LedgerService, opts ...Option) *ExchangeService {
	return &ExchangeService{
		base:      newBase(db, rm, cfg, "exchange", buildOptions(opts)),
		ownership: ownership,
		ledger:    ledger,
	}
}

// Offer proposes that fromUser hands name to toUser for amount.
func (s *ExchangeService) Offer(ctx context.Context, fromUser, name, toUser string, amount int64) (*models.Trade, error) {
	if amount < 0 {
		return nil, common.ErrInvalidAmount
	}
	if fromUser == toUser {
		return nil, common.ErrSelfTrade
	}

	var trade *models.Trade
	err := s.run(ctx, "trade_offer", func(ctx context.Context, tx dbx.DBTX) error {
		c, err := s.repos.Collectibles(tx).GetByName(ctx, name)
		if err != nil {
			return err
		}
		owner, err := s.ownership.ownerTx(ctx, tx, c.Name)
		if err != nil {
			return err
		}
		if owner != fromUser {
			return common.ErrNotOwner
		}
		balance, err := s.repos.Balances(tx).Get(ctx, toUser)
		if err != nil {
			return err
		}
		if balance < amount {
			return common.ErrInsufficientFunds
		}
		trade, err = s.repos.Trades(tx).Create(ctx, &models.Trade{
			OffererID:       fromUser,
			CollectibleName: c.Name,
			ReceiverID:      toUser,
			Amount:          amount,
			CreatedAt:       s.now(),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "trade offered", "trade", trade.ID, "from", fromUser, "to", toUser, "name", trade.CollectibleName, "amount", amount)
	return trade, nil
}

// Trade returns a pending offer.
func (s *ExchangeService) Trade(ctx context.Context, tradeID int64) (*models.Trade, error) {
	var t *models.Trade
	err := s.run(ctx, "trade_get", func(ctx context.Context, tx dbx.DBTX) (err error) {
		t, err = s.repos.Trades(tx).Get(ctx, tradeID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Confirm completes a trade on behalf of its receiver. A trade that is gone,
// whose offerer no longer owns the collectible or whose receiver can no
// longer pay is rejected and deleted. A confirmation by anyone but the
// receiver is rejected and leaves the trade pending.
func (s *ExchangeService) Confirm(ctx context.Context, tradeID int64, userID string) (*models.TradeResult, error) {
	var res *models.TradeResult
	err := s.run(ctx, "trade_confirm", func(ctx context.Context, tx dbx.DBTX) error {
		trades := s.repos.Trades(tx)

		t, err := trades.Get(ctx, tradeID)
		if errors.Is(err, common.ErrorNotFound) {
			res = rejected(nil, models.RejectNotFound)
			return nil
		}
		if err != nil {
			return err
		}
		if t.ReceiverID != userID {
			res = rejected(t, models.RejectWrongReceiver)
			return nil
		}

		reason, err := s.settleTx(ctx, tx, t)
		if err != nil {
			return err
		}
		if _, err := trades.Delete(ctx, t.ID); err != nil {
			return err
		}
		if reason != models.RejectNone {
			res = rejected(t, reason)
			return nil
		}
		res = &models.TradeResult{Outcome: models.TradeConfirmed, Trade: t}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "trade settled", "trade", tradeID, "outcome", res.Outcome, "reason", res.Reason)
	return res, nil
}

// settleTx moves the collectible and the currency. A non-empty reason means
// nothing was changed.
func (s *ExchangeService) settleTx(ctx context.Context, tx dbx.DBTX, t *models.Trade) (models.RejectReason, error) {
	owner, err := s.ownership.ownerTx(ctx, tx, t.CollectibleName)
	if err != nil {
		return models.RejectNone, err
	}
	if owner != t.OffererID {
		return models.RejectOwnershipChanged, nil
	}

	err = s.ledger.debitTx(ctx, tx, t.ReceiverID, t.Amount)
	if errors.Is(err, common.ErrInsufficientFunds) {
		return models.RejectInsufficientFunds, nil
	}
	if err != nil {
		return models.RejectNone, err
	}

	ok, err := s.ownership.releaseTx(ctx, tx, t.OffererID, t.CollectibleName)
	if err != nil {
		return models.RejectNone, err
	}
	if !ok {
		return models.RejectNone, errors.New("ownership vanished during settlement")
	}
	if err := s.ownership.grantTx(ctx, tx, t.ReceiverID, t.CollectibleName); err != nil {
		return models.RejectNone, err
	}
	if err := s.ledger.creditTx(ctx, tx, t.OffererID, t.Amount); err != nil {
		return models.RejectNone, err
	}
	return models.RejectNone, nil
}

// Decline drops a pending trade without any other effect.
func (s *ExchangeService) Decline(ctx context.Context, tradeID int64) error {
	return s.run(ctx, "trade_decline", func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := s.repos.Trades(tx).Delete(ctx, tradeID)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrorNotFound
		}
		return nil
	})
}

func rejected(t *models.Trade, reason models.RejectReason) *models.TradeResult {
	return &models.TradeResult{Outcome: models.TradeRejected, Reason: reason, Trade: t}
}
