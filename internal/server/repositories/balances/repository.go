package balances

import (
	"context"
	"time"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, userID string) (int64, error)
	Credit(ctx context.Context, userID string, amount int64, at time.Time) error
	Debit(ctx context.Context, userID string, amount int64) (bool, error)
	ResetAll(ctx context.Context) error
	Top(ctx context.Context, limit int) ([]models.RankEntry, error)
}
