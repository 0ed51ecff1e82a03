// controller/audit_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/accesskit/grantd/audit"
	"github.com/accesskit/grantd/util"
	helper_util "github.com/accesskit/grantd/util/helper"
)

// trailWindow is how far back the audit trail query reaches when the
// caller gives no explicit range.
const trailWindow = 90 * 24 * time.Hour

type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{
		auditService: auditService,
	}
}

// RegisterRoutes registers the audit API routes
func (ac *AuditController) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/grants/:id/audit-trail", ac.GetGrantTrail)
}

// GetGrantTrail endpoint. Optional from/to query parameters (RFC3339)
// bound the window; subject_id narrows it further.
func (ac *AuditController) GetGrantTrail(c *gin.Context) {
	grantID := c.Param("id")

	to := time.Now()
	from := to.Add(-trailWindow)

	if raw := c.Query("from"); raw != "" {
		parsed, err := helper_util.ParseTime(raw)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid from timestamp", err)
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := helper_util.ParseTime(raw)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid to timestamp", err)
			return
		}
		to = parsed
	}

	trail, err := ac.auditService.QueryTrail(c, from, to, grantID, c.Query("subject_id"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query audit trail", err)
		return
	}

	c.JSON(http.StatusOK, trail)
}
