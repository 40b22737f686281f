package repository

import (
	"context"

	"github.com/AlibekovAA/chat-accounts/internal/account/domain"
	commonerrors "github.com/AlibekovAA/chat-accounts/internal/common/errors"
)

// UserRepository is the credential store. Create is the single point where
// username uniqueness is decided: implementations must make the check and
// the insert one atomic step.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	FindByUsername(ctx context.Context, username string) (domain.User, error)
}

var (
	ErrUserNotFound          = commonerrors.ErrUserNotFound
	ErrUsernameAlreadyExists = commonerrors.ErrUsernameAlreadyExists
)
