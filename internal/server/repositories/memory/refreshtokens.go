package memory

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type RefreshTokensRepo struct {
	s *Store
}

func (r *RefreshTokensRepo) Upsert(ctx context.Context, userID string, token string, validity time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	r.s.refreshTokens[userID] = models.RefreshToken{
		UserID:    userID,
		Token:     token,
		Expires:   now.Add(validity),
		CreatedAt: now,
	}
	return nil
}

func (r *RefreshTokensRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rt := range r.s.refreshTokens {
		if rt.Token == token {
			return &rt, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *RefreshTokensRepo) Delete(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for userID, rt := range r.s.refreshTokens {
		if rt.Token == token {
			delete(r.s.refreshTokens, userID)
		}
	}
	return nil
}

func (r *RefreshTokensRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.refreshTokens, userID)
	return nil
}
