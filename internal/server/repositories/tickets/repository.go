package tickets

import (
	"context"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, t *models.ContestTicket) error
	Get(ctx context.Context, id string) (*models.ContestTicket, error)
	MarkResolved(ctx context.Context, t *models.ContestTicket) (bool, error)
}
