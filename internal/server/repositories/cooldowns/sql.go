// Package cooldowns stores the per-user timer record. Each gate has its own
// columns and its own upsert so that writing one gate never touches another.
package cooldowns

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

// Get returns the record or common.ErrorNotFound when the user never
// touched any gate.
func (r *SQLRepository) Get(ctx context.Context, userID string) (*models.Cooldown, error) {
	query :=
		`SELECT user_id, attempts, attempts_expiry, last_marriage, last_collect
		 FROM cooldowns WHERE user_id = ?`

	c := &models.Cooldown{}
	var expiry, marriage, collect sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, userID).
		Scan(&c.UserID, &c.Attempts, &expiry, &marriage, &collect)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.AttemptsExpiry = fromNull(expiry)
	c.LastMarriage = fromNull(marriage)
	c.LastCollect = fromNull(collect)
	return c, nil
}

// SaveAttempts writes the attempts counter and its expiry (nil clears it).
func (r *SQLRepository) SaveAttempts(ctx context.Context, userID string, attempts int, expiry *time.Time) error {
	query :=
		`INSERT INTO cooldowns (user_id, attempts, attempts_expiry)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
			attempts = excluded.attempts,
			attempts_expiry = excluded.attempts_expiry`

	if _, err := r.db.ExecContext(ctx, query, userID, attempts, toNull(expiry)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) SetLastMarriage(ctx context.Context, userID string, at time.Time) error {
	query :=
		`INSERT INTO cooldowns (user_id, last_marriage)
		 VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET last_marriage = excluded.last_marriage`

	if _, err := r.db.ExecContext(ctx, query, userID, at.UnixMilli()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) SetLastCollect(ctx context.Context, userID string, at time.Time) error {
	query :=
		`INSERT INTO cooldowns (user_id, last_collect)
		 VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET last_collect = excluded.last_collect`

	if _, err := r.db.ExecContext(ctx, query, userID, at.UnixMilli()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ResetAttemptsAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE cooldowns SET attempts = 0, attempts_expiry = NULL`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) ResetMarriageAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE cooldowns SET last_marriage = NULL`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func fromNull(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := timex.FromMillis(v.Int64)
	return &t
}

func toNull(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
