package memory

import (
	"context"

	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/server/models"
)

type UsersRepo struct {
	s *Store
}

func (r *UsersRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email || u.UserName == user.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}

	user.ID = newID()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return user, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UsersRepo) FindByEmailOrUserName(ctx context.Context, email, userName string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email || u.UserName == userName {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return nil
}

func (r *UsersRepo) UpdateDetails(ctx context.Context, id, email, userName string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	for otherID, other := range r.s.users {
		if otherID != id && (other.Email == email || other.UserName == userName) {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.Email = email
	u.UserName = userName
	u.UpdatedAt = r.s.now()
	r.s.users[id] = u
	return &u, nil
}
