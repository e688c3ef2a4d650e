package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type Repository interface {
	// Upsert stores token as the only refresh credential of userID,
	// replacing any previous one.
	Upsert(ctx context.Context, userID string, token string, validity time.Duration) error
	Find(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID string) error
}
