// Package trades stores pending trade offers. A row exists only while the
// offer is pending; both terminal states delete it.
package trades

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

func (r *SQLRepository) Create(ctx context.Context, t *models.Trade) (*models.Trade, error) {
	query :=
		`INSERT INTO trades (offerer_id, collectible_name, receiver_id, amount, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		t.OffererID, t.CollectibleName, t.ReceiverID, t.Amount, t.CreatedAt.UnixMilli()).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *SQLRepository) Get(ctx context.Context, id int64) (*models.Trade, error) {
	query :=
		`SELECT id, offerer_id, collectible_name, receiver_id, amount, created_at
		 FROM trades WHERE id = ?`

	t := &models.Trade{}
	var created int64
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.OffererID, &t.CollectibleName, &t.ReceiverID, &t.Amount, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	t.CreatedAt = timex.FromMillis(created)
	return t, nil
}

// Delete removes the offer and reports whether it still existed.
func (r *SQLRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}
