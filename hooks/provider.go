// hooks/provider.go
package hooks

import (
	"context"

	"github.com/accesskit/grantd/model"
)

// Provider is the extension-point contract implemented by conditional
// access and notification plugins. Providers are installed once at
// startup; identity (Name) is immutable afterwards.
//
// Handle returns a verdict for decisive events and is informational for
// notification events. A non-nil error marks the provider degraded for
// this call; it does not fail the triggering transition unless the
// provider is configured as required.
type Provider interface {
	Name() string
	SubscribedEvents() []model.HookEvent
	Handle(ctx context.Context, event model.HookEvent, grant *model.Grant) (model.HookResult, error)
}
