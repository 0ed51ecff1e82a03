// errors/provider_errors.go
package errors

import "errors"

var (
	ErrDuplicateProviderName = errors.New("provider name already registered")
	ErrProviderTimeout       = errors.New("provider call timed out")
	ErrRegistryFrozen        = errors.New("provider registry is frozen")
)
