// controller/controllers.go
package controller

import (
	"github.com/accesskit/grantd/audit"
	"github.com/accesskit/grantd/service"
)

// Controllers aggregates every controller the router mounts
type Controllers struct {
	Grant *GrantController
	Audit *AuditController
}

func InitControllers(grantService service.IGrantService, auditService audit.Service) *Controllers {
	return &Controllers{
		Grant: NewGrantController(grantService),
		Audit: NewAuditController(auditService),
	}
}
