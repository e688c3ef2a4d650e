package users

import (
	"context"

	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByEmailOrUserName returns common.ErrorNotFound when neither matches.
	FindByEmailOrUserName(ctx context.Context, email, userName string) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateDetails(ctx context.Context, id, email, userName string) (*models.User, error)
}
