package cooldowns

import (
	"context"
	"time"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/server/models"
)

type Repository interface {
	Get(ctx context.Context, userID string) (*models.Cooldown, error)
	SaveAttempts(ctx context.Context, userID string, attempts int, expiry *time.Time) error
	SetLastMarriage(ctx context.Context, userID string, at time.Time) error
	SetLastCollect(ctx context.Context, userID string, at time.Time) error
	ResetAttemptsAll(ctx context.Context) error
	ResetMarriageAll(ctx context.Context) error
}
