package service

import (
	"errors"

	commonerrors "github.com/AlibekovAA/chat-accounts/internal/common/errors"
)

// Status is the outcome reported to the presentation layer. Every
// non-success status is also the code of the matching domain error.
type Status string

const (
	StatusSuccess            Status = "SUCCESS"
	StatusUsernameTaken      Status = "USERNAME_TAKEN"
	StatusInvalidCredentials Status = "INVALID_CREDENTIALS"
	StatusValidationError    Status = "VALIDATION_ERROR"
	StatusAccountLocked      Status = "ACCOUNT_LOCKED"
	StatusExpired            Status = "EXPIRED"
	StatusMalformed          Status = "MALFORMED"
	StatusBadSignature       Status = "BAD_SIGNATURE"
	StatusRevoked            Status = "REVOKED"
	StatusStorageUnavailable Status = "STORAGE_UNAVAILABLE"
	StatusInternal           Status = "INTERNAL"
)

// StatusOf maps an error returned by AccountService to its Status. Errors
// that are not domain errors are reported as internal.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		return StatusInternal
	}
	switch status := Status(de.Code()); status {
	case StatusUsernameTaken, StatusInvalidCredentials, StatusValidationError,
		StatusAccountLocked, StatusExpired, StatusMalformed, StatusBadSignature,
		StatusRevoked, StatusStorageUnavailable:
		return status
	}
	if errors.Is(err, commonerrors.ErrCircuitOpen) || errors.Is(err, commonerrors.ErrDatabaseError) {
		return StatusStorageUnavailable
	}
	return StatusInternal
}

// reason is the client-safe message for err.
func reason(err error) string {
	if err == nil {
		return ""
	}
	if de, ok := commonerrors.AsDomainError(err); ok {
		return de.Message()
	}
	return commonerrors.ErrInternalError.Message()
}
