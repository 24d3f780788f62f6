package locations

import (
	"context"
	"net/http"

	"shelf/pkg/auditlog"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"
	"shelf/pkg/roles"
	"shelf/pkg/security"

	"github.com/gin-gonic/gin"
)

type LocationStore interface {
	GetLocations(ctx context.Context, organizationID string) ([]models.Location, error)
	GetLocation(ctx context.Context, organizationID, locationID string) (*models.Location, error)
	PersistLocation(ctx context.Context, organizationID string, req models.CreateLocationRequest) (*models.Location, error)
	UpdateLocation(ctx context.Context, organizationID, locationID string, req models.UpdateLocationRequest) (*models.Location, error)
	MoveLocation(ctx context.Context, organizationID, locationID string, parentID *string) (*models.Location, error)
	RemoveLocation(ctx context.Context, organizationID, locationID string) (*models.Location, error)
	GetLocationDescendantIDs(ctx context.Context, organizationID, locationID string, includeSelf bool) ([]string, error)
	GetLocationAncestorIDs(ctx context.Context, organizationID, locationID string) ([]string, error)
}

type LocationHandler struct {
	Repository LocationStore
	AuditLog   *auditlog.Auditlog
}

func NewLocationHandler(r LocationStore, a *auditlog.Auditlog) *LocationHandler {
	return &LocationHandler{Repository: r, AuditLog: a}
}

func (h *LocationHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/locations", security.Authorize(roles.SelfService), h.GetLocations)
	router.GET("/locations/:id", security.Authorize(roles.SelfService), h.GetLocation)
	router.GET("/locations/:id/descendants", security.Authorize(roles.SelfService), h.GetDescendants)
	router.POST("/locations", security.Authorize(roles.Admin), h.CreateLocation)
	router.PATCH("/locations/:id", security.Authorize(roles.Admin), h.UpdateLocation)
	router.PUT("/locations/:id/parent", security.Authorize(roles.Admin), h.MoveLocation)
	router.DELETE("/locations/:id", security.Authorize(roles.Admin), h.RemoveLocation)
}

func (h *LocationHandler) GetLocations(c *gin.Context) {
	locations, err := h.Repository.GetLocations(c.Request.Context(), security.GetOrganizationID(c))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not list locations", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, locations)
}

func (h *LocationHandler) GetLocation(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := security.GetOrganizationID(c)

	location, err := h.Repository.GetLocation(ctx, orgID, c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not get location", "details": err.Error()})
		return
	}

	ancestors, err := h.Repository.GetLocationAncestorIDs(ctx, orgID, location.ID)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not resolve location hierarchy", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"location": location, "ancestorIds": ancestors})
}

func (h *LocationHandler) GetDescendants(c *gin.Context) {
	includeSelf := c.DefaultQuery("includeSelf", "true") != "false"

	ids, err := h.Repository.GetLocationDescendantIDs(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"), includeSelf)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not resolve location descendants", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ids": ids})
}

func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req models.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	location, err := h.Repository.PersistLocation(c.Request.Context(), security.GetOrganizationID(c), req)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not insert location", "details": err.Error()})
		return
	}

	h.AuditLog.Log(c.Request.Context(), "create", map[string]interface{}{"name": location.Name, "parent_id": location.ParentID}, location)

	c.JSON(http.StatusCreated, location)
}

func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	var req models.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	location, err := h.Repository.UpdateLocation(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"), req)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not update location", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, location)
}

func (h *LocationHandler) MoveLocation(c *gin.Context) {
	var req models.MoveLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	location, err := h.Repository.MoveLocation(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"), req.ParentID)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not move location", "details": err.Error()})
		return
	}

	h.AuditLog.Log(c.Request.Context(), "move", map[string]interface{}{"parent_id": location.ParentID}, location)

	c.JSON(http.StatusOK, location)
}

func (h *LocationHandler) RemoveLocation(c *gin.Context) {
	location, err := h.Repository.RemoveLocation(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not delete location", "details": err.Error()})
		return
	}

	h.AuditLog.Log(c.Request.Context(), "remove", map[string]interface{}{"name": location.Name}, location)

	c.JSON(http.StatusOK, gin.H{"message": "Location deleted successfully"})
}
