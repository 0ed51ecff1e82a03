// hooks/registry.go
package hooks

import (
	"sync"

	"go.uber.org/zap"

	grantd_errors "github.com/accesskit/grantd/errors"
	logger "github.com/accesskit/grantd/logging"
	"github.com/accesskit/grantd/model"
)

// Registry holds the installed providers. Registration happens during
// startup only; after Freeze the registry is read-only and lookups are
// lock-free from the caller's perspective.
type Registry struct {
	mu       sync.RWMutex
	frozen   bool
	names    map[string]struct{}
	byEvent  map[model.HookEvent][]Provider
	ordered  []Provider
	required map[string]bool
}

// NewRegistry creates an empty provider registry. Providers whose names
// appear in requiredNames have their pre-activation errors escalated to
// vetoes by the dispatcher.
func NewRegistry(requiredNames []string) *Registry {
	required := make(map[string]bool, len(requiredNames))
	for _, name := range requiredNames {
		required[name] = true
	}
	return &Registry{
		names:    make(map[string]struct{}),
		byEvent:  make(map[model.HookEvent][]Provider),
		required: required,
	}
}

// Register installs a provider for every event it subscribes to. Fails
// if the registry has been frozen or the name is already taken.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return grantd_errors.ErrRegistryFrozen
	}
	if _, exists := r.names[p.Name()]; exists {
		return grantd_errors.ErrDuplicateProviderName
	}

	r.names[p.Name()] = struct{}{}
	r.ordered = append(r.ordered, p)
	for _, event := range p.SubscribedEvents() {
		r.byEvent[event] = append(r.byEvent[event], p)
	}

	logger.Info("Registered hook provider",
		zap.String("provider", p.Name()),
		zap.Int("events", len(p.SubscribedEvents())),
		zap.Bool("required", r.required[p.Name()]))
	return nil
}

// Freeze marks the end of startup; further Register calls fail
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// ProvidersFor returns the providers subscribed to event, in
// registration order. The returned slice must not be mutated.
func (r *Registry) ProvidersFor(event model.HookEvent) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byEvent[event]
}

// Required reports whether a provider's errors are fatal to approval
func (r *Registry) Required(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.required[name]
}

// Providers returns every registered provider in registration order
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ordered
}
