// plugin/autoapprove/autoapprove.go
package autoapprove

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/accesskit/grantd/config"
	"github.com/accesskit/grantd/hooks"
	logger "github.com/accesskit/grantd/logging"
	"github.com/accesskit/grantd/model"
)

const providerName = "conditional-access"

// Provider gates grant activation on deployment-configured access rules:
// resources on the blocklist are vetoed outright, and a missing request
// reason can be made a veto as well. Resources on the exempt list skip
// both checks.
type Provider struct {
	requireReason    bool
	blockedResources map[string]struct{}
	exemptResources  map[string]struct{}
}

var _ hooks.Provider = (*Provider)(nil)

// New builds the provider from configuration
// (plugins.conditionalAccess.*).
func New() *Provider {
	return &Provider{
		requireReason:    config.GetBool("plugins.conditionalAccess.requireReason"),
		blockedResources: toSet(config.GetStringSlice("plugins.conditionalAccess.blockedResources")),
		exemptResources:  toSet(config.GetStringSlice("plugins.conditionalAccess.exemptResources")),
	}
}

// NewWithRules builds the provider from explicit rules. Test hook and
// embedding entry point.
func NewWithRules(requireReason bool, blocked, exempt []string) *Provider {
	return &Provider{
		requireReason:    requireReason,
		blockedResources: toSet(blocked),
		exemptResources:  toSet(exempt),
	}
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) SubscribedEvents() []model.HookEvent {
	return []model.HookEvent{model.EventPreActivation}
}

func (p *Provider) Handle(ctx context.Context, event model.HookEvent, grant *model.Grant) (model.HookResult, error) {
	if event != model.EventPreActivation {
		return model.Allow(), nil
	}

	if _, exempt := p.exemptResources[grant.ResourceID]; exempt {
		logger.Info("Resource exempt from conditional access checks",
			zap.String("grantID", grant.ID),
			zap.String("resourceID", grant.ResourceID))
		return model.Allow(), nil
	}

	if _, blocked := p.blockedResources[grant.ResourceID]; blocked {
		return model.Deny(fmt.Sprintf("resource %s is blocked for self-service access", grant.ResourceID)), nil
	}

	if p.requireReason && grant.Reason == "" {
		return model.Deny("a request reason is required for this resource"), nil
	}

	return model.Allow(), nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
