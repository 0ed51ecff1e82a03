// errors/grant_errors.go
package errors

import "errors"

var (
	ErrGrantNotFound    = errors.New("grant not found")
	ErrInvalidGrantData = errors.New("invalid grant data")

	ErrInvalidDurationOption = errors.New("invalid duration option")
	ErrInvalidCustomDuration = errors.New("invalid custom duration")
	ErrInvalidTransition     = errors.New("invalid grant state transition")

	ErrDatabaseOperation      = errors.New("database operation failed")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	ErrInternalServer         = errors.New("internal server error")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrInvalidPagination      = errors.New("invalid pagination parameters")
)
