package custody

import (
	"context"
	"net/http"

	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"
	"shelf/pkg/roles"
	"shelf/pkg/security"

	"github.com/gin-gonic/gin"
)

type CustodyManager interface {
	GetTeamMember(ctx context.Context, organizationID, teamMemberID string) (*models.TeamMember, error)
	AssignAssetCustody(ctx context.Context, organizationID, assetID, custodianID string) (*models.Asset, error)
	ReleaseAssetCustody(ctx context.Context, organizationID, assetID string) (*models.Asset, error)
	AssignKitCustody(ctx context.Context, organizationID, kitID, custodianID string) (*models.Kit, error)
	ReleaseKitCustody(ctx context.Context, organizationID, kitID string) (*models.Kit, error)
}

type CustodyHandler struct {
	service CustodyManager
}

func NewCustodyHandler(s CustodyManager) *CustodyHandler {
	return &CustodyHandler{service: s}
}

func (h *CustodyHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/assets/:id/custody", security.Authorize(roles.SelfService), h.AssignAssetCustody)
	router.DELETE("/assets/:id/custody", security.Authorize(roles.Base), h.ReleaseAssetCustody)
	router.POST("/kits/:id/custody", security.Authorize(roles.SelfService), h.AssignKitCustody)
	router.DELETE("/kits/:id/custody", security.Authorize(roles.Base), h.ReleaseKitCustody)
}

func (h *CustodyHandler) AssignAssetCustody(c *gin.Context) {
	req, ok := h.bindAssignment(c)
	if !ok {
		return
	}

	asset, err := h.service.AssignAssetCustody(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"), req.CustodianID)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not assign custody", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *CustodyHandler) ReleaseAssetCustody(c *gin.Context) {
	asset, err := h.service.ReleaseAssetCustody(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not release custody", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *CustodyHandler) AssignKitCustody(c *gin.Context) {
	req, ok := h.bindAssignment(c)
	if !ok {
		return
	}

	kit, err := h.service.AssignKitCustody(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"), req.CustodianID)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not assign kit custody", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, kit)
}

func (h *CustodyHandler) ReleaseKitCustody(c *gin.Context) {
	kit, err := h.service.ReleaseKitCustody(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not release kit custody", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, kit)
}

// bindAssignment reads the request body. Self-service users may only take
// custody themselves, through the team member linked to their account.
func (h *CustodyHandler) bindAssignment(c *gin.Context) (models.AssignCustodyRequest, bool) {
	var req models.AssignCustodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return req, false
	}

	if security.IsAllowed(c, roles.Base) {
		return req, true
	}

	member, err := h.service.GetTeamMember(c.Request.Context(), security.GetOrganizationID(c), req.CustodianID)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not assign custody", "details": err.Error()})
		return req, false
	}
	if member.UserID == nil || *member.UserID != security.GetUserID(c) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Self service users can only assign custody to themselves"})
		return req, false
	}

	return req, true
}
