// service/services.go
package service

import (
	"context"

	"github.com/accesskit/grantd/model"
)

// IGrantService defines the interface for grant lifecycle operations
type IGrantService interface {
	RequestAccess(ctx context.Context, req model.AccessRequest) (*model.Grant, error)
	Decide(ctx context.Context, grantID string, approve bool, deciderID string) (*model.Grant, error)
	Revoke(ctx context.Context, grantID, reason string) (*model.Grant, error)
	Expire(ctx context.Context, grantID string) error
	GetGrant(ctx context.Context, grantID string) (*model.Grant, error)
	ListActiveGrants(ctx context.Context) ([]*model.Grant, error)
	AccessTimeOptions() []model.AccessTimeOption
}

// GrantCache is the read-cache surface the service depends on
type GrantCache interface {
	GetGrant(ctx context.Context, grantID string) (*model.Grant, error)
	SetGrant(ctx context.Context, grant *model.Grant) error
	DeleteGrant(ctx context.Context, grantID string) error
}

// Notifier announces lifecycle changes outside the hook pipeline
type Notifier interface {
	NotifyGrantChange(ctx context.Context, changeType string, grant *model.Grant) error
	NotifyAdmins(ctx context.Context, message string) error
}
