package kits

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

type KitStore interface {
	GetKit(ctx context.Context, organizationID, kitID string) (*models.Kit, error)
	FindKitByCode(ctx context.Context, organizationID, code string) (*models.Kit, error)
	ListKits(ctx context.Context, predicate exp.Expression) ([]models.Kit, error)
	GetKitAssets(ctx context.Context, organizationID, kitID string) ([]models.Asset, error)
	PersistKit(ctx context.Context, organizationID string, req models.CreateKitRequest) (*models.Kit, error)
	AddAssets(ctx context.Context, organizationID, kitID string, assetIDs []string) (*models.Kit, error)
	RemoveAssets(ctx context.Context, organizationID, kitID string, assetIDs []string) (*models.Kit, error)
}

type KitHandler struct {
	repository   KitStore
	locations    query.LocationResolver
	inventoryLog *inventorylog.InventoryLog
}

func NewKitHandler(r KitStore, l query.LocationResolver, il *inventorylog.InventoryLog) *KitHandler {
	return &KitHandler{repository: r, locations: l, inventoryLog: il}
}

func (h *KitHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/kits", security.Authorize(roles.SelfService), h.GetKits)
	router.GET("/kits/:id", security.Authorize(roles.SelfService), h.GetKit)
	router.GET("/kits/:id/assets", security.Authorize(roles.SelfService), h.GetKitAssets)
	router.POST("/kits", security.Authorize(roles.Base), h.CreateKit)
	router.POST("/kits/:id/assets", security.Authorize(roles.Base), h.AddAssets)
	router.DELETE("/kits/:id/assets", security.Authorize(roles.Base), h.RemoveAssets)
}

func (h *KitHandler) GetKits(c *gin.Context) {
	ctx := c.Request.Context()
	orgID := security.GetOrganizationID(c)

	params := query.ParseSearchParams(c.Request.URL.Query())
	if err := params.ExpandLocation(ctx, h.locations, orgID, c.Query("includeChildren") == "true"); err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not resolve location", "details": err.Error()})
		return
	}

	kits, err := h.repository.ListKits(ctx, query.BuildWhereClause(orgID, params, query.Kits))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not list kits", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, kits)
}

func (h *KitHandler) GetKit(c *gin.Context) {
	kit, err := h.repository.GetKit(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not get kit", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, kit)
}

func (h *KitHandler) GetKitAssets(c *gin.Context) {
	kitAssets, err := h.repository.GetKitAssets(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not list kit assets", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, kitAssets)
}

func (h *KitHandler) CreateKit(c *gin.Context) {
	var req models.CreateKitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	kit, err := h.repository.PersistKit(c.Request.Context(), security.GetOrganizationID(c), req)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Failed to create kit", "details": err.Error()})
		return
	}

	h.inventoryLog.CreateKitAuditLogEntry(c.Request.Context(), "create", kit, "Kit created", nil)

	c.JSON(http.StatusCreated, kit)
}

func (h *KitHandler) AddAssets(c *gin.Context) {
	var req models.KitAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	kit, err := h.repository.AddAssets(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"), req.AssetIDs)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Failed to add assets to kit", "details": err.Error()})
		return
	}

	h.inventoryLog.CreateKitAuditLogEntry(c.Request.Context(), "add_assets", kit, "Assets added to kit", req.AssetIDs)

	c.JSON(http.StatusOK, kit)
}

func (h *KitHandler) RemoveAssets(c *gin.Context) {
	var req models.KitAssetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	kit, err := h.repository.RemoveAssets(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"), req.AssetIDs)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Failed to remove assets from kit", "details": err.Error()})
		return
	}

	h.inventoryLog.CreateKitAuditLogEntry(c.Request.Context(), "remove_assets", kit, "Assets removed from kit", req.AssetIDs)

	c.JSON(http.StatusOK, kit)
}
