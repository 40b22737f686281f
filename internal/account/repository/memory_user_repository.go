package repository

import (
	"context"
	"sync"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
)

type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]domain.User)}
}

var _ UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) Create(ctx context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// checked under the lock so a request cancelled while waiting never inserts
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, exists := r.users[user.Username]; exists {
		return ErrUsernameAlreadyExists
	}
	r.users[user.Username] = user
	return nil
}

func (r *MemoryUserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
