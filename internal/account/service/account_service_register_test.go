package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
	accountrepo "github.com/AlibekovAA/chat-accounts/internal/account/repository"
	"github.com/AlibekovAA/chat-accounts/internal/account/service"
	commonerrors "github.com/AlibekovAA/chat-accounts/internal/common/errors"
)

func TestAccountService_Register_Success(t *testing.T) {
	env := setupAccountService(t)

	result, err := env.svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "password123",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != service.StatusSuccess {
		t.Errorf("expected status %s, got %s", service.StatusSuccess, result.Status)
	}
	if result.UserID == "" {
		t.Error("expected user id to be set")
	}

	user, err := env.users.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected stored user, got %v", err)
	}
	if user.PasswordHash == "password123" {
		t.Error("plaintext password must not be stored")
	}
	if user.Salt == "" {
		t.Error("expected salt to be stored")
	}
	if !user.CreatedAt.Equal(env.clock.Now()) {
		t.Errorf("expected created_at %v, got %v", env.clock.Now(), user.CreatedAt)
	}
}

func TestAccountService_Register_DuplicateUsername(t *testing.T) {
	env := setupAccountService(t)
	ctx := context.Background()
	input := service.RegisterInput{Username: "alice", Password: "password123"}

	first, err := env.svc.Register(ctx, input)
	if err != nil || first.Status != service.StatusSuccess {
		t.Fatalf("expected first registration to succeed, got %s (%v)", first.Status, err)
	}

	second, err := env.svc.Register(ctx, service.RegisterInput{Username: "alice", Password: "another123"})
	if !errors.Is(err, service.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	if second.Status != service.StatusUsernameTaken {
		t.Errorf("expected status %s, got %s", service.StatusUsernameTaken, second.Status)
	}
	if second.Reason == "" {
		t.Error("expected reason to be set")
	}
}

func TestAccountService_Register_ValidationError(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "password123"},
		{"short username", "ab", "password123"},
		{"long username", "abcdefghijklmnopqrstuvwxyz1234567", "password123"},
		{"invalid characters", "al ice", "password123"},
		{"leading underscore", "_alice", "password123"},
		{"short password", "alice", "pass1"},
		{"password without digit", "alice", "passwordonly"},
		{"password without letter", "alice", "1234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupAccountService(t)

			result, err := env.svc.Register(context.Background(), service.RegisterInput{
				Username: tt.username,
				Password: tt.password,
			})

			if !errors.Is(err, service.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if result.Status != service.StatusValidationError {
				t.Errorf("expected status %s, got %s", service.StatusValidationError, result.Status)
			}
			if env.hasher.hashCalls.Load() != 0 {
				t.Error("password must not be hashed for invalid input")
			}
		})
	}
}

func TestAccountService_Register_StorageFailure(t *testing.T) {
	repo := &mockUserRepo{
		createFunc: func(ctx context.Context, user domain.User) error {
			return commonerrors.ErrDatabaseError.WithCause(errors.New("connection refused"))
		},
	}
	env := setupAccountService(t, withUsers(repo))

	result, err := env.svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "password123",
	})

	if !errors.Is(err, service.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if result.Status != service.StatusStorageUnavailable {
		t.Errorf("expected status %s, got %s", service.StatusStorageUnavailable, result.Status)
	}
	if result.Reason == "connection refused" {
		t.Error("infrastructure details must not reach the caller")
	}
}

func TestAccountService_Register_CancelledContextDoesNotInsert(t *testing.T) {
	env := setupAccountService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := env.svc.Register(ctx, service.RegisterInput{
		Username: "alice",
		Password: "password123",
	})

	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if result.Status != service.StatusStorageUnavailable {
		t.Errorf("expected status %s, got %s", service.StatusStorageUnavailable, result.Status)
	}
	if _, err := env.users.FindByUsername(context.Background(), "alice"); !errors.Is(err, accountrepo.ErrUserNotFound) {
		t.Errorf("expected no user to be stored, got %v", err)
	}
}

func TestAccountService_Register_ConcurrentSameUsername(t *testing.T) {
	env := setupAccountService(t)

	const callers = 16
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		taken     atomic.Int32
	)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, _ := env.svc.Register(context.Background(), service.RegisterInput{
				Username: "alice",
				Password: "password123",
			})
			switch result.Status {
			case service.StatusSuccess:
				successes.Add(1)
			case service.StatusUsernameTaken:
				taken.Add(1)
			default:
				t.Errorf("unexpected status %s", result.Status)
			}
		}()
	}
	wg.Wait()

	if successes.Load() != 1 {
		t.Errorf("expected exactly one success, got %d", successes.Load())
	}
	if taken.Load() != callers-1 {
		t.Errorf("expected %d username taken results, got %d", callers-1, taken.Load())
	}
}

func TestAccountService_Register_IDGenerationError(t *testing.T) {
	env := setupAccountService(t, func(d *service.AccountServiceDeps) {
		d.IDGenerator = &mockIDGenerator{newIDFunc: func() (string, error) {
			return "", errors.New("entropy exhausted")
		}}
	})

	result, err := env.svc.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Password: "password123",
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if result.Status != service.StatusInternal {
		t.Errorf("expected status %s, got %s", service.StatusInternal, result.Status)
	}
}
