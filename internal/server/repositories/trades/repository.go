package trades

import (
	"context"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.Trade) (*models.Trade, error)
	Get(ctx context.Context, id int64) (*models.Trade, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
