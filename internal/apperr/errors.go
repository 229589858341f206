package apperr

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrProviderUnavailable = errors.New("provider not configured")
	ErrUnknownJob          = errors.New("unknown job")
)
