package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/config"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/repositories/repomanager"
)

// CooldownService gates contest attempts, marriage-style wins and currency
// collection with three independent per-user timers.
type CooldownService struct {
	base
}

func NewCooldownService(db *sql.DB, rm repomanager.RepositoryManager, cfg *config.Config, opts ...Option) *CooldownService {
	return &CooldownService{base: newBase(db, rm, cfg, "cooldowns", buildOptions(opts))}
}

// Status returns the user's timers. Users without a record get a zero one.
func (s *CooldownService) Status(ctx context.Context, userID string) (*models.Cooldown, error) {
	var cd *models.Cooldown
	err := s.run(ctx, "cooldown_status", func(ctx context.Context, tx dbx.DBTX) (err error) {
		cd, err = s.load(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cd, nil
}

// CanAttempt returns nil when the user may start a contest, or a
// *common.CooldownError naming the blocking gate. An expired attempts
// lockout is reset as part of the check.
func (s *CooldownService) CanAttempt(ctx context.Context, userID string) error {
	return s.run(ctx, "can_attempt", func(ctx context.Context, tx dbx.DBTX) error {
		return s.canAttemptTx(ctx, tx, userID, s.now())
	})
}

// RecordAttempt consumes one contest attempt.
func (s *CooldownService) RecordAttempt(ctx context.Context, userID string) error {
	return s.run(ctx, "record_attempt", func(ctx context.Context, tx dbx.DBTX) error {
		return s.recordAttemptTx(ctx, tx, userID, s.now())
	})
}

// RecordSuccess stamps a contest win, starting the marriage gate.
func (s *CooldownService) RecordSuccess(ctx context.Context, userID string) error {
	return s.run(ctx, "record_success", func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Cooldowns(tx).SetLastMarriage(ctx, userID, s.now())
	})
}

// CanCollect returns nil when the collection gate is open.
func (s *CooldownService) CanCollect(ctx context.Context, userID string) error {
	return s.run(ctx, "can_collect", func(ctx context.Context, tx dbx.DBTX) error {
		return s.canCollectTx(ctx, tx, userID, s.now())
	})
}

// RecordCollect stamps a currency collection.
func (s *CooldownService) RecordCollect(ctx context.Context, userID string) error {
	return s.run(ctx, "record_collect", func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Cooldowns(tx).SetLastCollect(ctx, userID, s.now())
	})
}

// ResetAttemptsAll clears every attempt counter and lockout.
func (s *CooldownService) ResetAttemptsAll(ctx context.Context) error {
	return s.run(ctx, "reset_attempts_all", func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Cooldowns(tx).ResetAttemptsAll(ctx)
	})
}

// ResetMarriageGate clears every user's last win.
func (s *CooldownService) ResetMarriageGate(ctx context.Context) error {
	return s.run(ctx, "reset_marriage_gate", func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Cooldowns(tx).ResetMarriageAll(ctx)
	})
}

func (s *CooldownService) load(ctx context.Context, tx dbx.DBTX, userID string) (*models.Cooldown, error) {
	cd, _, err := s.lookup(ctx, tx, userID)
	return cd, err
}

// lookup is load that also reports whether the record exists.
func (s *CooldownService) lookup(ctx context.Context, tx dbx.DBTX, userID string) (*models.Cooldown, bool, error) {
	cd, err := s.repos.Cooldowns(tx).Get(ctx, userID)
	if errors.Is(err, common.ErrorNotFound) {
		return &models.Cooldown{UserID: userID}, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cd, true, nil
}

// marriageTx blocks while the last win is younger than the window.
func (s *CooldownService) marriageTx(ctx context.Context, tx dbx.DBTX, userID string, now time.Time) error {
	cd, err := s.load(ctx, tx, userID)
	if err != nil {
		return err
	}
	return s.marriageGate(cd, now)
}

func (s *CooldownService) marriageGate(cd *models.Cooldown, now time.Time) error {
	if cd.LastMarriage == nil {
		return nil
	}
	if until := cd.LastMarriage.Add(s.cfg.CooldownWindow); now.Before(until) {
		return common.NewCooldownError(common.GateMarriage, until.Sub(now))
	}
	return nil
}

// canAttemptTx checks the marriage gate first, then lazily resets an
// expired attempts window, then applies the attempts lockout.
func (s *CooldownService) canAttemptTx(ctx context.Context, tx dbx.DBTX, userID string, now time.Time) error {
	cd, err := s.load(ctx, tx, userID)
	if err != nil {
		return err
	}
	if err := s.marriageGate(cd, now); err != nil {
		return err
	}
	if cd.AttemptsExpiry != nil && !now.Before(*cd.AttemptsExpiry) {
		if err := s.repos.Cooldowns(tx).SaveAttempts(ctx, userID, 0, nil); err != nil {
			return err
		}
		cd.Attempts, cd.AttemptsExpiry = 0, nil
	}
	if cd.Attempts >= s.cfg.MaxAttempts && cd.AttemptsExpiry != nil {
		return common.NewCooldownError(common.GateAttempts, cd.AttemptsExpiry.Sub(now))
	}
	return nil
}

// recordAttemptTx increments the counter. Only the user's first-ever
// attempt opens a window (expiry = now + window); after a reset the expiry
// stays unset until the counter reaches the maximum, which starts the
// lockout.
func (s *CooldownService) recordAttemptTx(ctx context.Context, tx dbx.DBTX, userID string, now time.Time) error {
	cd, found, err := s.lookup(ctx, tx, userID)
	if err != nil {
		return err
	}
	if cd.AttemptsExpiry != nil && !now.Before(*cd.AttemptsExpiry) {
		cd.Attempts, cd.AttemptsExpiry = 0, nil
	}

	attempts := cd.Attempts + 1
	expiry := cd.AttemptsExpiry
	if !found {
		e := now.Add(s.cfg.CooldownWindow)
		expiry = &e
	}
	if attempts >= s.cfg.MaxAttempts {
		attempts = s.cfg.MaxAttempts
		e := now.Add(s.cfg.CooldownWindow)
		expiry = &e
	}
	return s.repos.Cooldowns(tx).SaveAttempts(ctx, userID, attempts, expiry)
}

func (s *CooldownService) canCollectTx(ctx context.Context, tx dbx.DBTX, userID string, now time.Time) error {
	cd, err := s.load(ctx, tx, userID)
	if err != nil {
		return err
	}
	if cd.LastCollect == nil {
		return nil
	}
	if until := cd.LastCollect.Add(s.cfg.CooldownWindow); now.Before(until) {
		return common.NewCooldownError(common.GateCollect, until.Sub(now))
	}
	return nil
}
