// controller/grant_controller.go
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	grantd_errors "github.com/accesskit/grantd/errors"
	"github.com/accesskit/grantd/model"
	"github.com/accesskit/grantd/service"
	"github.com/accesskit/grantd/util"
	helper_util "github.com/accesskit/grantd/util/helper"
)

type GrantController struct {
	grantService service.IGrantService
	validator    *util.ValidationUtil
}

func NewGrantController(grantService service.IGrantService) *GrantController {
	return &GrantController{
		grantService: grantService,
		validator:    util.NewValidationUtil(),
	}
}

// RegisterRoutes registers the API routes
func (gc *GrantController) RegisterRoutes(r *gin.RouterGroup) {
	grants := r.Group("/grants")
	{
		grants.POST("", gc.RequestAccess)
		grants.POST("/:id/decision", gc.Decide)
		grants.POST("/:id/revoke", gc.Revoke)
		grants.GET("/:id", gc.GetGrant)
		grants.GET("", gc.ListActiveGrants)
	}
	r.GET("/access-time-options", gc.ListAccessTimeOptions)
}

// RequestAccess endpoint
func (gc *GrantController) RequestAccess(c *gin.Context) {
	var req model.AccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid access request", grantd_errors.ErrInvalidGrantData)
		return
	}
	if err := gc.validator.ValidateAccessRequest(req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, err.Error(), grantd_errors.ErrInvalidGrantData)
		return
	}

	grant, err := gc.grantService.RequestAccess(c, req)
	if err != nil {
		switch {
		case errors.Is(err, grantd_errors.ErrInvalidDurationOption):
			util.RespondWithError(c, http.StatusBadRequest, "Unknown access-time option", err)
		case errors.Is(err, grantd_errors.ErrInvalidCustomDuration):
			util.RespondWithError(c, http.StatusBadRequest, "Custom duration must be a positive number of seconds", err)
		case errors.Is(err, grantd_errors.ErrPersistenceUnavailable):
			util.RespondWithError(c, http.StatusServiceUnavailable, "Persistence unavailable", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create access request", grantd_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, grant)
}

type decisionPayload struct {
	Approve   bool   `json:"approve"`
	DeciderID string `json:"decider_id"`
}

// Decide endpoint
func (gc *GrantController) Decide(c *gin.Context) {
	grantID := c.Param("id")
	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid decision payload", err)
		return
	}
	if payload.DeciderID == "" {
		payload.DeciderID, _ = util.GetUserIDFromContext(c)
	}

	grant, err := gc.grantService.Decide(c, grantID, payload.Approve, payload.DeciderID)
	if err != nil {
		gc.respondTransitionError(c, err, "Failed to decide grant")
		return
	}

	c.JSON(http.StatusOK, grant)
}

type revokePayload struct {
	Reason string `json:"reason"`
}

// Revoke endpoint
func (gc *GrantController) Revoke(c *gin.Context) {
	grantID := c.Param("id")
	var payload revokePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid revoke payload", err)
		return
	}

	grant, err := gc.grantService.Revoke(c, grantID, payload.Reason)
	if err != nil {
		gc.respondTransitionError(c, err, "Failed to revoke grant")
		return
	}

	c.JSON(http.StatusOK, grant)
}

// GetGrant endpoint
func (gc *GrantController) GetGrant(c *gin.Context) {
	grantID := c.Param("id")

	grant, err := gc.grantService.GetGrant(c, grantID)
	if err != nil {
		if errors.Is(err, grantd_errors.ErrGrantNotFound) {
			util.RespondWithError(c, http.StatusNotFound, "Grant not found", err)
			return
		}
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch grant", err)
		return
	}

	c.JSON(http.StatusOK, grant)
}

// ListActiveGrants endpoint
func (gc *GrantController) ListActiveGrants(c *gin.Context) {
	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil || limit < 0 || offset < 0 {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", grantd_errors.ErrInvalidPagination)
		return
	}

	grants, err := gc.grantService.ListActiveGrants(c)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to list active grants", err)
		return
	}

	if offset >= len(grants) {
		c.JSON(http.StatusOK, []*model.Grant{})
		return
	}
	if end := offset + limit; end < len(grants) {
		grants = grants[offset:end]
	} else {
		grants = grants[offset:]
	}

	c.JSON(http.StatusOK, grants)
}

// ListAccessTimeOptions endpoint
func (gc *GrantController) ListAccessTimeOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gc.grantService.AccessTimeOptions())
}

func (gc *GrantController) respondTransitionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, grantd_errors.ErrGrantNotFound):
		util.RespondWithError(c, http.StatusNotFound, "Grant not found", err)
	case errors.Is(err, grantd_errors.ErrInvalidTransition):
		util.RespondWithError(c, http.StatusConflict, "Grant state does not allow this transition", err)
	case errors.Is(err, grantd_errors.ErrPersistenceUnavailable):
		util.RespondWithError(c, http.StatusServiceUnavailable, "Persistence unavailable", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, fallback, grantd_errors.ErrInternalServer)
	}
}
