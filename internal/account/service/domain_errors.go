package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/chat-accounts/internal/common/errors"
)

var (
	ErrValidation = commonerrors.NewDomainError(
		string(StatusValidationError),
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"validation failed",
	)

	ErrUsernameTaken = commonerrors.NewDomainError(
		string(StatusUsernameTaken),
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"username already exists",
	)

	ErrInvalidCredentials = commonerrors.NewDomainError(
		string(StatusInvalidCredentials),
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid username or password",
	)

	ErrAccountLocked = commonerrors.NewDomainError(
		string(StatusAccountLocked),
		commonerrors.CategoryUnauthorized,
		http.StatusLocked,
		"too many failed login attempts, try again later",
	)

	ErrTokenExpired = commonerrors.NewDomainError(
		string(StatusExpired),
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"session token expired",
	)

	ErrTokenMalformed = commonerrors.NewDomainError(
		string(StatusMalformed),
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"session token is malformed",
	)

	ErrTokenBadSignature = commonerrors.NewDomainError(
		string(StatusBadSignature),
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"session token signature is invalid",
	)

	ErrTokenRevoked = commonerrors.NewDomainError(
		string(StatusRevoked),
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"session token has been revoked",
	)

	ErrStorageUnavailable = commonerrors.NewDomainError(
		string(StatusStorageUnavailable),
		commonerrors.CategoryExternal,
		http.StatusServiceUnavailable,
		"account storage temporarily unavailable",
	)

	ErrSigningKeyUnavailable = commonerrors.NewDomainError(
		"SIGNING_KEY_UNAVAILABLE",
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		"session signing key unavailable",
	)
)

func newInternalError(cause error) commonerrors.DomainError {
	return commonerrors.ErrInternalError.WithCause(cause)
}
