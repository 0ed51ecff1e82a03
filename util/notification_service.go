// util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/accesskit/grantd/logging"
	"github.com/accesskit/grantd/model"
)

type NotificationService struct {
	// You might want to add dependencies here, such as a message queue client
}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyGrantChange announces a grant lifecycle change. In a real
// deployment this would publish to a message queue or chat integration;
// provider plugins cover the per-channel delivery.
func (n *NotificationService) NotifyGrantChange(ctx context.Context, changeType string, grant *model.Grant) error {
	switch changeType {
	case "requested":
		logger.Info("NOTIFICATION: Access requested",
			zap.String("grantID", grant.ID),
			zap.String("subjectID", grant.SubjectID),
			zap.String("resourceID", grant.ResourceID))
	case "activated":
		logger.Info("NOTIFICATION: Access granted",
			zap.String("grantID", grant.ID),
			zap.String("subjectID", grant.SubjectID),
			zap.String("resourceID", grant.ResourceID))
	case "denied":
		logger.Info("NOTIFICATION: Access denied",
			zap.String("grantID", grant.ID),
			zap.String("reason", grant.DenialReason))
	case "expired":
		logger.Info("NOTIFICATION: Access expired",
			zap.String("grantID", grant.ID),
			zap.String("subjectID", grant.SubjectID))
	case "revoked":
		logger.Info("NOTIFICATION: Access revoked",
			zap.String("grantID", grant.ID),
			zap.String("reason", grant.RevocationReason))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}

	return nil
}

// NotifyAdmins notifies system administrators
func (n *NotificationService) NotifyAdmins(ctx context.Context, message string) error {
	logger.Info("Notifying admins", zap.String("message", message))
	return nil
}
