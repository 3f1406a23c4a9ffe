// Package balances stores the per-user currency amount.
package balances

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Get returns the balance, 0 for users without a row.
func (r *SQLRepository) Get(ctx context.Context, userID string) (int64, error) {
	var amount int64
	err := r.db.QueryRowContext(ctx, `SELECT amount FROM balances WHERE user_id = ?`, userID).Scan(&amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return amount, nil
}

// Credit adds amount, creating the row on first use.
func (r *SQLRepository) Credit(ctx context.Context, userID string, amount int64, at time.Time) error {
	query :=
		`INSERT INTO balances (user_id, amount, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET amount = balances.amount + excluded.amount`

	if _, err := r.db.ExecContext(ctx, query, userID, amount, at.UnixMilli()); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Debit subtracts amount only if the balance covers it and reports whether
// it did. The balance never goes below zero.
func (r *SQLRepository) Debit(ctx context.Context, userID string, amount int64) (bool, error) {
	query := `UPDATE balances SET amount = amount - ? WHERE user_id = ? AND amount >= ?`

	res, err := r.db.ExecContext(ctx, query, amount, userID, amount)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *SQLRepository) ResetAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE balances SET amount = 0`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Top returns the limit richest users; ties keep row creation order.
func (r *SQLRepository) Top(ctx context.Context, limit int) ([]models.RankEntry, error) {
	query :=
		`SELECT user_id, amount FROM balances
		 ORDER BY amount DESC, id ASC
		 LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select ranking: %w", err)
	}
	defer rows.Close()

	result := []models.RankEntry{}
	for rows.Next() {
		e := models.RankEntry{Position: len(result) + 1}
		if err := rows.Scan(&e.UserID, &e.Amount); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
