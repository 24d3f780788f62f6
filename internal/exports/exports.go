package exports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"time"

	"shelf/internal/archive"
	"shelf/internal/inventory/query"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"
	"shelf/pkg/roles"
	"shelf/pkg/security"

	"github.com/doug-martin/goqu/v9/exp"
	"github.com/gin-gonic/gin"
)

var assetHeader = []string{"id", "code", "title", "status", "category", "location", "custodian", "kit_id", "created_at"}

// WriteAssetsCSV writes a header row and one row per asset.
func WriteAssetsCSV(w io.Writer, assets []models.Asset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(assetHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, asset := range assets {
		var category, location, custodian, kitID string
		if asset.Category != nil {
			category = asset.Category.Name
		}
		if asset.Location != nil {
			location = asset.Location.Name
		}
		if asset.Custody != nil && asset.Custody.Custodian != nil {
			custodian = asset.Custody.Custodian.Name
		}
		if asset.KitID != nil {
			kitID = *asset.KitID
		}

		row := []string{
			asset.ID,
			asset.Code,
			asset.Title,
			asset.Status.String(),
			category,
			location,
			custodian,
			kitID,
			asset.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", asset.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

type AssetLister interface {
	ListAssets(ctx context.Context, predicate exp.Expression) ([]models.Asset, error)
}

// Archiver keeps a copy of an export and returns a download link for it.
type Archiver interface {
	Put(ctx context.Context, key, contentType string, body []byte) (*archive.Object, error)
}

type Handler struct {
	assets    AssetLister
	locations query.LocationResolver
	archiver  Archiver
}

func NewHandler(a AssetLister, l query.LocationResolver) *Handler {
	return &Handler{assets: a, locations: l}
}

// WithArchive enables POST /exports/assets/archive.
func (h *Handler) WithArchive(a Archiver) *Handler {
	h.archiver = a
	return h
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/exports/assets.csv", security.Authorize(roles.Admin), h.ExportAssets)
	if h.archiver != nil {
		router.POST("/exports/assets/archive", security.Authorize(roles.Admin), h.ArchiveAssets)
	}
}

func (h *Handler) listAssets(c *gin.Context) ([]models.Asset, bool) {
	ctx := c.Request.Context()
	orgID := security.GetOrganizationID(c)

	params := query.ParseSearchParams(c.Request.URL.Query())
	if err := params.ExpandLocation(ctx, h.locations, orgID, c.Query("includeChildren") == "true"); err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not resolve location", "details": err.Error()})
		return nil, false
	}

	assets, err := h.assets.ListAssets(ctx, query.BuildWhereClause(orgID, params, query.Assets))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not list assets", "details": err.Error()})
		return nil, false
	}

	return assets, true
}

// ExportAssets accepts the same filters as the asset list.
func (h *Handler) ExportAssets(c *gin.Context) {
	assets, ok := h.listAssets(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="assets.csv"`)
	c.Status(http.StatusOK)
	if err := WriteAssetsCSV(c.Writer, assets); err != nil {
		_ = c.Error(err)
	}
}

// ArchiveAssets stores the filtered export in the archive bucket and returns
// a presigned link instead of the file.
func (h *Handler) ArchiveAssets(c *gin.Context) {
	assets, ok := h.listAssets(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := WriteAssetsCSV(&buf, assets); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Could not write export", "details": err.Error()})
		return
	}

	key := archive.Key(security.GetOrganizationID(c), "exports", "assets.csv")
	obj, err := h.archiver.Put(c.Request.Context(), key, "text/csv; charset=utf-8", buf.Bytes())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Could not archive export", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, obj)
}
