// Package ownership stores which user holds which collectible. A collectible
// name appears in at most one row (unique index on lower(collectible_name)).
package ownership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/dbx"
	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts an ownership row; a second owner for the same name yields
// common.ErrAlreadyOwned.
func (r *SQLRepository) Create(ctx context.Context, o *models.Ownership) error {
	query :=
		`INSERT INTO ownership (user_id, collectible_name, acquired_at)
		 VALUES (?, ?, ?)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		o.UserID, o.CollectibleName, o.AcquiredAt.UnixMilli()).Scan(&o.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrAlreadyOwned
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// OwnerOf returns the owning user id or common.ErrorNotFound.
func (r *SQLRepository) OwnerOf(ctx context.Context, name string) (string, error) {
	query := `SELECT user_id FROM ownership WHERE lower(collectible_name) = lower(?)`

	var userID string
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return userID, nil
}

// Delete removes the row only when userID owns name and reports whether a
// row was removed.
func (r *SQLRepository) Delete(ctx context.Context, userID, name string) (bool, error) {
	query := `DELETE FROM ownership WHERE user_id = ? AND lower(collectible_name) = lower(?)`

	res, err := r.db.ExecContext(ctx, query, userID, name)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *SQLRepository) DeleteByName(ctx context.Context, name string) error {
	query := `DELETE FROM ownership WHERE lower(collectible_name) = lower(?)`
	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM ownership`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListByUser returns owned names in acquisition order. limit <= 0 means all.
func (r *SQLRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]string, error) {
	query := `SELECT collectible_name FROM ownership WHERE user_id = ? ORDER BY id`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select ownership: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *SQLRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM ownership WHERE user_id = ?`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLRepository) CountByName(ctx context.Context, name string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ownership WHERE lower(collectible_name) = lower(?)`, name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
