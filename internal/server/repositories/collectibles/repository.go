package collectibles

import (
	"context"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Collectible) (*models.Collectible, error)
	GetByName(ctx context.Context, name string) (*models.Collectible, error)
	DeleteByName(ctx context.Context, name string) error
	CountUnclaimed(ctx context.Context) (int, error)
	UnclaimedAt(ctx context.Context, offset int) (*models.Collectible, error)
	SetClaimed(ctx context.Context, name string, claimed bool) error
	ClearAllClaimed(ctx context.Context) error
	ListClaimState(ctx context.Context) ([]*models.Collectible, error)
}
