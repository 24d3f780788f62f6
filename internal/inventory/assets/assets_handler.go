package assets

import (
	"context"
	"net/http"

	inventorylog "shelf/internal/inventory/inventory_log"
	"shelf/internal/inventory/query"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"
	"shelf/pkg/roles"
	"shelf/pkg/security"

	"github.com/doug-martin/goqu/v9/exp"
	"github.com/gin-gonic/gin"
)

type AssetStore interface {
	GetAsset(ctx context.Context, organizationID, assetID string) (*models.Asset, error)
	FindAssetByCode(ctx context.Context, organizationID, code string) (*models.Asset, error)
	ListAssets(ctx context.Context, predicate exp.Expression) ([]models.Asset, error)
	PersistAsset(ctx context.Context, organizationID string, req models.CreateAssetRequest) (*models.Asset, error)
	MoveAsset(ctx context.Context, organizationID, assetID string, locationID *string) (*models.Asset, error)
	RemoveAsset(ctx context.Context, organizationID, assetID string) (*models.Asset, error)
}

type AssetHandler struct {
	repository   AssetStore
	locations    query.LocationResolver
	inventoryLog *inventorylog.InventoryLog
}

func NewAssetHandler(r AssetStore, l query.LocationResolver, il *inventorylog.InventoryLog) *AssetHandler {
	return &AssetHandler{
		repository:   r,
		locations:    l,
		inventoryLog: il,
	}
}

func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/assets", security.Authorize(roles.SelfService), h.GetAssets)
	router.GET("/assets/:id", security.Authorize(roles.SelfService), h.GetAsset)
	router.GET("/assets/code/:code", security.Authorize(roles.SelfService), h.GetAssetByCode)
	router.GET("/locations/:id/assets", security.Authorize(roles.SelfService), h.GetLocationAssets)
	router.POST("/assets", security.Authorize(roles.Base), h.CreateAsset)
	router.PUT("/assets/:id/location", security.Authorize(roles.Base), h.MoveAsset)
	router.DELETE("/assets/:id", security.Authorize(roles.Admin), h.RemoveAsset)
}

func (h *AssetHandler) GetAssets(c *gin.Context) {
	params := query.ParseSearchParams(c.Request.URL.Query())
	h.listAssets(c, params, c.Query("includeChildren") == "true")
}

func (h *AssetHandler) GetLocationAssets(c *gin.Context) {
	params := query.ParseSearchParams(c.Request.URL.Query())
	params.LocationID = c.Param("id")
	h.listAssets(c, params, c.Query("includeChildren") == "true")
}

func (h *AssetHandler) listAssets(c *gin.Context, params query.SearchParams, includeChildren bool) {
	ctx := c.Request.Context()
	orgID := security.GetOrganizationID(c)

	if err := params.ExpandLocation(ctx, h.locations, orgID, includeChildren); err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not resolve location", "details": err.Error()})
		return
	}

	assets, err := h.repository.ListAssets(ctx, query.BuildWhereClause(orgID, params, query.Assets))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not list assets", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, assets)
}

func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, err := h.repository.GetAsset(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not get asset", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) GetAssetByCode(c *gin.Context) {
	asset, err := h.repository.FindAssetByCode(c.Request.Context(), security.GetOrganizationID(c), c.Param("code"))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Unable to locate asset with given code", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req models.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	asset, err := h.repository.PersistAsset(c.Request.Context(), security.GetOrganizationID(c), req)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Failed to create asset", "details": err.Error()})
		return
	}

	h.inventoryLog.CreateAssetAuditLogEntry(c.Request.Context(), "create", asset, "Asset created successfully")

	c.JSON(http.StatusCreated, asset)
}

func (h *AssetHandler) MoveAsset(c *gin.Context) {
	var req models.MoveAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	asset, err := h.repository.MoveAsset(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"), req.LocationID)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Failed to move asset", "details": err.Error()})
		return
	}

	h.inventoryLog.CreateAssetAuditLogEntry(c.Request.Context(), "move", asset, "Asset moved")

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) RemoveAsset(c *gin.Context) {
	asset, err := h.repository.RemoveAsset(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Asset cannot be removed", "details": err.Error()})
		return
	}

	h.inventoryLog.CreateAssetAuditLogEntry(c.Request.Context(), "remove", asset, "Asset removed")

	c.JSON(http.StatusOK, gin.H{"message": "Asset deleted successfully"})
}
