// Package tickets stores contest tickets: one row per presented collectible,
// flipped from presented to resolved exactly once.
package tickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/timex"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, t *models.ContestTicket) error {
	query :=
		`INSERT INTO contest_tickets (id, user_id, collectible_name, image, state, presented_at)
		 VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.UserID, t.CollectibleName, t.Image, string(t.State), t.PresentedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*models.ContestTicket, error) {
	query :=
		`SELECT id, user_id, collectible_name, image, state, presented_at, resolved_at,
			user_roll, opponent_roll, outcome
		 FROM contest_tickets WHERE id = ?`

	t := &models.ContestTicket{}
	var state, outcome string
	var presented int64
	var resolved sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.UserID, &t.CollectibleName, &t.Image, &state, &presented, &resolved,
		&t.UserRoll, &t.OpponentRoll, &outcome,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	t.State = models.TicketState(state)
	t.Outcome = models.ContestOutcome(outcome)
	t.PresentedAt = timex.FromMillis(presented)
	if resolved.Valid {
		at := timex.FromMillis(resolved.Int64)
		t.ResolvedAt = &at
	}
	return t, nil
}

// MarkResolved stores the rolls and outcome, but only while the ticket is
// still presented. It reports whether this call did the transition.
func (r *SQLRepository) MarkResolved(ctx context.Context, t *models.ContestTicket) (bool, error) {
	if t.ResolvedAt == nil {
		return false, fmt.Errorf("ticket %s: resolved_at is required", t.ID)
	}
	query :=
		`UPDATE contest_tickets
		 SET state = ?, resolved_at = ?, user_roll = ?, opponent_roll = ?, outcome = ?
		 WHERE id = ? AND state = ?`

	res, err := r.db.ExecContext(ctx, query,
		string(models.TicketResolved), t.ResolvedAt.UnixMilli(), t.UserRoll, t.OpponentRoll,
		string(t.Outcome), t.ID, string(models.TicketPresented))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}
