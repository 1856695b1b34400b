package usecase

import "errors"

var (
	// ErrUnauthorized covers every failed ownership check, including "resource
	// does not exist": callers must not be able to probe for existence.
	ErrUnauthorized = errors.New("unauthorized")

	ErrInvalidInput = errors.New("invalid input")
)
