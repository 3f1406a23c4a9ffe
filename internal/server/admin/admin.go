// Package admin gates administrative engine operations behind an injected
// authorization check. The engine itself does not know who is an operator.
package admin

import (
	"context"
	"strings"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/logging"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/services"
)

// Authorizer decides whether a caller may run administrative operations.
type Authorizer interface {
	IsAdmin(ctx context.Context, callerID string) bool
}

// StaticAuthorizer allows a fixed set of identities.
type StaticAuthorizer struct {
	ids map[string]struct{}
}

// NewStaticAuthorizer builds an authorizer from configured admin ids.
// Blank entries are ignored.
func NewStaticAuthorizer(ids []string) *StaticAuthorizer {
	a := &StaticAuthorizer{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			a.ids[id] = struct{}{}
		}
	}
	return a
}

func (a *StaticAuthorizer) IsAdmin(_ context.Context, callerID string) bool {
	_, ok := a.ids[callerID]
	return ok
}

// Admin exposes the administrative engine operations to authorized callers.
type Admin struct {
	engine *services.Engine
	auth   Authorizer
	logger logging.Logger
}

func New(engine *services.Engine, auth Authorizer, logger logging.Logger) *Admin {
	return &Admin{engine: engine, auth: auth, logger: logger.With("module", "admin")}
}

func (a *Admin) authorize(ctx context.Context, callerID, op string) error {
	if !a.auth.IsAdmin(ctx, callerID) {
		a.logger.Warn(ctx, "unauthorized admin call", "caller", callerID, "op", op)
		return common.ErrorUnauthorized
	}
	a.logger.Info(ctx, "admin call", "caller", callerID, "op", op)
	return nil
}

func (a *Admin) AddCollectible(ctx context.Context, callerID, name, image string) (*models.Collectible, error) {
	if err := a.authorize(ctx, callerID, "add"); err != nil {
		return nil, err
	}
	return a.engine.Catalog.Add(ctx, name, image)
}

func (a *Admin) RemoveCollectible(ctx context.Context, callerID, name string) error {
	if err := a.authorize(ctx, callerID, "remove"); err != nil {
		return err
	}
	return a.engine.Catalog.Remove(ctx, name)
}

func (a *Admin) ReleaseAll(ctx context.Context, callerID string) error {
	if err := a.authorize(ctx, callerID, "release_all"); err != nil {
		return err
	}
	return a.engine.Ownership.ReleaseAll(ctx)
}

func (a *Admin) ResetAttempts(ctx context.Context, callerID string) error {
	if err := a.authorize(ctx, callerID, "reset_attempts"); err != nil {
		return err
	}
	return a.engine.Cooldowns.ResetAttemptsAll(ctx)
}

func (a *Admin) ResetMarriage(ctx context.Context, callerID string) error {
	if err := a.authorize(ctx, callerID, "reset_marriage"); err != nil {
		return err
	}
	return a.engine.Cooldowns.ResetMarriageGate(ctx)
}

func (a *Admin) ResetBalances(ctx context.Context, callerID string) error {
	if err := a.authorize(ctx, callerID, "reset_balances"); err != nil {
		return err
	}
	return a.engine.Ledger.ResetAll(ctx)
}

// Adjust credits (positive delta) or debits a user's balance and returns
// the new balance.
func (a *Admin) Adjust(ctx context.Context, callerID, userID string, delta int64) (int64, error) {
	if err := a.authorize(ctx, callerID, "adjust"); err != nil {
		return 0, err
	}
	return a.engine.Ledger.Adjust(ctx, userID, delta)
}

// Audit reports collectibles whose claimed flag is out of step.
func (a *Admin) Audit(ctx context.Context, callerID string) ([]string, error) {
	if err := a.authorize(ctx, callerID, "audit"); err != nil {
		return nil, err
	}
	return a.engine.Ownership.Audit(ctx)
}
