// plugin/notifier/notifier.go
package notifier

import (
	"context"

	"github.com/accesskit/grantd/hooks"
	"github.com/accesskit/grantd/model"
	"github.com/accesskit/grantd/util"
)

const providerName = "notifier"

// Provider relays lifecycle notifications through the notification
// service. Outcomes are informational; the dispatcher never lets a
// notification failure touch grant state.
type Provider struct {
	notificationSvc *util.NotificationService
}

var _ hooks.Provider = (*Provider)(nil)

func New(notificationSvc *util.NotificationService) *Provider {
	return &Provider{notificationSvc: notificationSvc}
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) SubscribedEvents() []model.HookEvent {
	return []model.HookEvent{
		model.EventGrantActivated,
		model.EventGrantDenied,
		model.EventGrantExpired,
		model.EventGrantRevoked,
	}
}

func (p *Provider) Handle(ctx context.Context, event model.HookEvent, grant *model.Grant) (model.HookResult, error) {
	if err := p.notificationSvc.NotifyGrantChange(ctx, changeType(event), grant); err != nil {
		return model.HookResult{}, err
	}
	return model.Allow(), nil
}

func changeType(event model.HookEvent) string {
	switch event {
	case model.EventGrantActivated:
		return "activated"
	case model.EventGrantDenied:
		return "denied"
	case model.EventGrantExpired:
		return "expired"
	case model.EventGrantRevoked:
		return "revoked"
	default:
		return string(event)
	}
}
