package service

import "errors"

// storageError turns any failure from a store or the breaker into
// ErrStorageUnavailable, keeping the original as the cause.
func storageError(err error) error {
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return ErrStorageUnavailable.WithCause(err)
}

