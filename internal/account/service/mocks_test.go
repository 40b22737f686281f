package service_test

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
	accountrepo "github.com/AlibekovAA/chat-accounts/internal/account/repository"
	"github.com/AlibekovAA/chat-accounts/internal/account/service"
	"github.com/AlibekovAA/chat-accounts/internal/common/clock"
	"github.com/AlibekovAA/chat-accounts/internal/common/config"
	"github.com/AlibekovAA/chat-accounts/internal/common/logger"
	"github.com/AlibekovAA/chat-accounts/internal/common/resilience"
)

const testSecret = "test-secret-key-must-be-at-least-32-bytes-long"

type mockUserRepo struct {
	createFunc         func(ctx context.Context, user domain.User) error
	findByUsernameFunc func(ctx context.Context, username string) (domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username)
	}
	return domain.User{}, accountrepo.ErrUserNotFound
}

type mockRevokedTokenRepo struct {
	revokeFunc        func(ctx context.Context, token domain.RevokedToken) error
	isRevokedFunc     func(ctx context.Context, jti string, now time.Time) (bool, error)
	deleteExpiredFunc func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockRevokedTokenRepo) Revoke(ctx context.Context, token domain.RevokedToken) error {
	if m.revokeFunc != nil {
		return m.revokeFunc(ctx, token)
	}
	return nil
}

func (m *mockRevokedTokenRepo) IsRevoked(ctx context.Context, jti string, now time.Time) (bool, error) {
	if m.isRevokedFunc != nil {
		return m.isRevokedFunc(ctx, jti, now)
	}
	return false, nil
}

func (m *mockRevokedTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx, now)
	}
	return 0, nil
}

// mockHasher stands in for Argon2 so tests do not pay the memory cost.
type mockHasher struct {
	hashCalls   atomic.Int32
	verifyCalls atomic.Int32
	hashFunc    func(password string) (string, string, error)
}

func (m *mockHasher) Hash(password string) (string, string, error) {
	m.hashCalls.Add(1)
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hash:" + password, "salt", nil
}

func (m *mockHasher) Verify(password, hash, salt string) bool {
	m.verifyCalls.Add(1)
	return salt == "salt" && hash == "hash:"+password
}

type mockIDGenerator struct {
	counter   atomic.Int64
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	if m.newIDFunc != nil {
		return m.newIDFunc()
	}
	n := m.counter.Add(1)
	return fmt.Sprintf("id-%d", n), nil
}

type testEnv struct {
	svc     *service.AccountService
	users   accountrepo.UserRepository
	revoked accountrepo.RevokedTokenRepository
	hasher  *mockHasher
	clock   *clock.MockClock
}

type envOption func(*service.AccountServiceDeps)

func withUsers(repo accountrepo.UserRepository) envOption {
	return func(d *service.AccountServiceDeps) { d.Users = repo }
}

func withRevokedTokens(repo accountrepo.RevokedTokenRepository) envOption {
	return func(d *service.AccountServiceDeps) { d.RevokedTokens = repo }
}

func withBreaker(threshold int32) envOption {
	return func(d *service.AccountServiceDeps) {
		d.Breaker = resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  threshold,
			ResetAfter: time.Minute,
			Name:       "test",
			Clock:      d.Clock,
		})
	}
}

func setupAccountService(t *testing.T, opts ...envOption) testEnv {
	t.Helper()

	mockClock := clock.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	hasher := &mockHasher{}

	tokens, err := service.NewTokenIssuer(testSecret, &mockIDGenerator{}, time.Hour)
	if err != nil {
		t.Fatalf("failed to create token issuer: %v", err)
	}

	deps := service.AccountServiceDeps{
		Users:         accountrepo.NewMemoryUserRepository(),
		RevokedTokens: accountrepo.NewMemoryRevokedTokenRepository(),
		Hasher:        hasher,
		Tokens:        tokens,
		IDGenerator:   &mockIDGenerator{},
		Clock:         mockClock,
		Limiter: service.NewLoginLimiter(config.LockoutConfig{
			MaxFailures: 3,
			Window:      10 * time.Minute,
			Duration:    15 * time.Minute,
		}, mockClock),
		Log: logger.NewWithWriter(io.Discard, "account-test", "error"),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	svc, err := service.NewAccountService(deps)
	if err != nil {
		t.Fatalf("failed to create account service: %v", err)
	}

	// the dummy hash computed at construction is not part of any test
	hasher.hashCalls.Store(0)

	return testEnv{
		svc:     svc,
		users:   deps.Users,
		revoked: deps.RevokedTokens,
		hasher:  hasher,
		clock:   mockClock,
	}
}
