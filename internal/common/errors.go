package common

import "errors"

var (
	// ErrNotInitialized is returned by components used before Init.
	ErrNotInitialized = errors.New("not initialized")

	// ErrWrongPassphrase is returned when the at-rest passphrase does not
	// match the one the store was created with.
	ErrWrongPassphrase = errors.New("wrong passphrase")
)
