package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrAtCapacity      = errors.New("at capacity")
	ErrNotConfigured   = errors.New("not configured")
	ErrProviderFailure = errors.New("provider failure")
)
