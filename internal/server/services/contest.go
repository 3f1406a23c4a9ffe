package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/config"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/dice"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ContestService runs the randomized acquisition of unclaimed collectibles.
// Attempt presents a collectible as a one-shot ticket; Resolve rolls for it
// exactly once.
type ContestService struct {
	base
	catalog   *CatalogService
	ownership *OwnershipService
	cooldowns *CooldownService
	roll      dice.Contest
}

func NewContestService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config,
	catalog *CatalogService, ownership *OwnershipService, cooldowns *CooldownService, opts ...Option) *ContestService {
	return &ContestService{
		base:      newBase(db, rm, cfg, "contest", buildOptions(opts)),
		catalog:   catalog,
		ownership: ownership,
		cooldowns: cooldowns,
		roll:      dice.Contest{Sides: cfg.ContestDieSides, Advantage: cfg.ContestAdvantage},
	}
}

// Attempt checks the contest gate, draws an unclaimed collectible and
// consumes one attempt. An empty pool fails with common.ErrEmptyPool and
// consumes nothing.
func (s *ContestService) Attempt(ctx context.Context, userID string) (*models.ContestTicket, error) {
	var ticket *models.ContestTicket
	err := s.run(ctx, "contest_attempt", func(ctx context.Context, tx dbx.DBTX) error {
		now := s.now()
		if err := s.cooldowns.canAttemptTx(ctx, tx, userID, now); err != nil {
			return err
		}
		c, err := s.catalog.randomUnclaimedTx(ctx, tx)
		if err != nil {
			return err
		}
		if err := s.cooldowns.recordAttemptTx(ctx, tx, userID, now); err != nil {
			return err
		}
		ticket = &models.ContestTicket{
			ID:              uuid.NewString(),
			UserID:          userID,
			CollectibleName: c.Name,
			Image:           c.Image,
			State:           models.TicketPresented,
			PresentedAt:     now,
		}
		return s.repos.Tickets(tx).Create(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "collectible presented", "user", userID, "name", ticket.CollectibleName, "ticket", ticket.ID)
	return ticket, nil
}

// Resolve rolls for a presented ticket. The user wins when their roll is at
// least the collectible's roll plus the advantage; a win grants ownership
// and starts the marriage gate. A ticket resolves once: later calls fail
// with common.ErrTicketResolved. Tickets of other users are not found.
func (s *ContestService) Resolve(ctx context.Context, userID, ticketID string) (*models.ContestResult, error) {
	roll, err := s.roll.Roll(s.dice)
	if err != nil {
		err = s.check(ctx, "contest_resolve", err)
		s.metrics.Observe("contest_resolve", err)
		return nil, err
	}
	return s.resolve(ctx, userID, ticketID, roll)
}

func (s *ContestService) resolve(ctx context.Context, userID, ticketID string, roll dice.ContestRoll) (*models.ContestResult, error) {
	var res *models.ContestResult
	err := s.run(ctx, "contest_resolve", func(ctx context.Context, tx dbx.DBTX) error {
		now := s.now()
		repo := s.repos.Tickets(tx)

		t, err := repo.Get(ctx, ticketID)
		if err != nil {
			return err
		}
		if t.UserID != userID {
			return common.ErrorNotFound
		}
		if t.State == models.TicketResolved {
			return common.ErrTicketResolved
		}
		if err := s.cooldowns.marriageTx(ctx, tx, userID, now); err != nil {
			return err
		}

		res = &models.ContestResult{
			Ticket:       t,
			Outcome:      models.ContestLost,
			UserRoll:     roll.User,
			OpponentRoll: roll.Opponent,
		}
		if roll.Won() {
			err := s.ownership.grantTx(ctx, tx, userID, t.CollectibleName)
			switch {
			case err == nil:
				res.Outcome = models.ContestWon
				if err := s.repos.Cooldowns(tx).SetLastMarriage(ctx, userID, now); err != nil {
					return err
				}
			case errors.Is(err, common.ErrAlreadyOwned), errors.Is(err, common.ErrorNotFound):
				res.Contested = true
			default:
				return err
			}
		}

		t.State = models.TicketResolved
		t.ResolvedAt = &now
		t.UserRoll, t.OpponentRoll, t.Outcome = roll.User, roll.Opponent, res.Outcome
		ok, err := repo.MarkResolved(ctx, t)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrTicketResolved
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "contest resolved",
		"user", userID, "name", res.Ticket.CollectibleName, "outcome", res.Outcome,
		"user_roll", res.UserRoll, "opponent_roll", res.OpponentRoll, "contested", res.Contested)
	return res, nil
}

// Ticket returns a ticket owned by userID.
func (s *ContestService) Ticket(ctx context.Context, userID, ticketID string) (*models.ContestTicket, error) {
	var t *models.ContestTicket
	err := s.run(ctx, "contest_ticket", func(ctx context.Context, tx dbx.DBTX) (err error) {
		t, err = s.repos.Tickets(tx).Get(ctx, ticketID)
		if err == nil && t.UserID != userID {
			err = common.ErrorNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
