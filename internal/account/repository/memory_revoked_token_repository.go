package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
)

type MemoryRevokedTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]domain.RevokedToken
}

func NewMemoryRevokedTokenRepository() *MemoryRevokedTokenRepository {
	return &MemoryRevokedTokenRepository{tokens: make(map[string]domain.RevokedToken)}
}

var _ RevokedTokenRepository = (*MemoryRevokedTokenRepository)(nil)

func (r *MemoryRevokedTokenRepository) Revoke(ctx context.Context, token domain.RevokedToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[token.TokenID]; !exists {
		r.tokens[token.TokenID] = token
	}
	return nil
}

func (r *MemoryRevokedTokenRepository) IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[jti]
	return ok && now.Before(token.ExpiresAt), nil
}

func (r *MemoryRevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for jti, token := range r.tokens {
		if !now.Before(token.ExpiresAt) {
			delete(r.tokens, jti)
			deleted++
		}
	}
	return deleted, nil
}
