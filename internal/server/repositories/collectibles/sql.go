// Package collectibles stores the catalog. Names are matched ignoring case
// everywhere; the unique index is on lower(name).
package collectibles

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

// SQLRepository implements catalog storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts a collectible. A case-insensitive name clash yields
// common.ErrDuplicateName.
func (r *SQLRepository) Create(ctx context.Context, c *models.Collectible) (*models.Collectible, error) {
	query :=
		`INSERT INTO collectibles (name, image, claimed, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Image, false, c.CreatedAt.UnixMilli()).Scan(&c.ID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateName
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	c.Claimed = false
	return c, nil
}

func (r *SQLRepository) GetByName(ctx context.Context, name string) (*models.Collectible, error) {
	query :=
		`SELECT id, name, image, claimed, created_at FROM collectibles
		 WHERE lower(name) = lower(?)`

	c, err := scanCollectible(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// DeleteByName removes the catalog row. Deleting a missing name is not an error.
func (r *SQLRepository) DeleteByName(ctx context.Context, name string) error {
	query := `DELETE FROM collectibles WHERE lower(name) = lower(?)`
	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLRepository) CountUnclaimed(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM collectibles WHERE claimed = ?`

	var n int
	if err := r.db.QueryRowContext(ctx, query, false).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// UnclaimedAt returns the offset-th unclaimed collectible in id order.
func (r *SQLRepository) UnclaimedAt(ctx context.Context, offset int) (*models.Collectible, error) {
	query :=
		`SELECT id, name, image, claimed, created_at FROM collectibles
		 WHERE claimed = ?
		 ORDER BY id
		 LIMIT 1 OFFSET ?`

	c, err := scanCollectible(r.db.QueryRowContext(ctx, query, false, offset))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

// SetClaimed updates the claimed cache of one collectible.
func (r *SQLRepository) SetClaimed(ctx context.Context, name string, claimed bool) error {
	query := `UPDATE collectibles SET claimed = ? WHERE lower(name) = lower(?)`

	res, err := r.db.ExecContext(ctx, query, claimed, name)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *SQLRepository) ClearAllClaimed(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE collectibles SET claimed = ?`, false); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ListClaimState returns every collectible in id order. Used by consistency
// checks of the claimed cache.
func (r *SQLRepository) ListClaimState(ctx context.Context) ([]*models.Collectible, error) {
	query := `SELECT id, name, image, claimed, created_at FROM collectibles ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select collectibles: %w", err)
	}
	defer rows.Close()

	var result []*models.Collectible
	for rows.Next() {
		c, err := scanCollectible(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCollectible(row scanner) (*models.Collectible, error) {
	c := &models.Collectible{}
	var created int64
	if err := row.Scan(&c.ID, &c.Name, &c.Image, &c.Claimed, &created); err != nil {
		return nil, err
	}
	c.CreatedAt = timex.FromMillis(created)
	return c, nil
}
