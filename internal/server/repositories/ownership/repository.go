package ownership

import (
	"context"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, o *models.Ownership) error
	OwnerOf(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, userID, name string) (bool, error)
	DeleteByName(ctx context.Context, name string) error
	DeleteAll(ctx context.Context) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]string, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	CountByName(ctx context.Context, name string) (int, error)
}
