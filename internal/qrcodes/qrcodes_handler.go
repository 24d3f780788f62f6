package qrcodes

import (
	"bytes"
	"context"
	"net/http"

	"shelf/internal/archive"
	custom_error "shelf/pkg/errors"
	"shelf/pkg/roles"
	"shelf/pkg/security"

	"github.com/gin-gonic/gin"
)

type BundleRequest struct {
	Codes []string `json:"codes" binding:"required,min=1"`
}

// Archiver keeps a copy of a label bundle and returns a download link for it.
type Archiver interface {
	Put(ctx context.Context, key, contentType string, body []byte) (*archive.Object, error)
}

type Handler struct {
	service  *Service
	archiver Archiver
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

// WithArchive enables POST /qr/bundle/archive.
func (h *Handler) WithArchive(a Archiver) *Handler {
	h.archiver = a
	return h
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/scan", security.Authorize(roles.SelfService), h.Scan)
	router.GET("/qr/:code", security.Authorize(roles.SelfService), h.ScanLabel)
	router.GET("/qr/:code/png", security.Authorize(roles.SelfService), h.GetPNG)
	router.POST("/qr/bundle", security.Authorize(roles.Base), h.GetBundle)
	if h.archiver != nil {
		router.POST("/qr/bundle/archive", security.Authorize(roles.Base), h.ArchiveBundle)
	}
}

func (h *Handler) Scan(c *gin.Context) {
	h.resolve(c, c.Query("value"))
}

func (h *Handler) ScanLabel(c *gin.Context) {
	h.resolve(c, c.Param("code"))
}

func (h *Handler) resolve(c *gin.Context, value string) {
	result, err := h.service.ResolveScan(c.Request.Context(), security.GetOrganizationID(c), value)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Unable to resolve scanned code", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetPNG(c *gin.Context) {
	png, err := h.service.PNG(c.Param("code"))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Unable to render qr code", "details": err.Error()})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) bundle(c *gin.Context) (*bytes.Buffer, bool) {
	var req BundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return nil, false
	}

	var buf bytes.Buffer
	if err := h.service.WriteBundle(&buf, req.Codes); err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Unable to build qr code bundle", "details": err.Error()})
		return nil, false
	}

	return &buf, true
}

func (h *Handler) GetBundle(c *gin.Context) {
	buf, ok := h.bundle(c)
	if !ok {
		return
	}

	c.Header("Content-Disposition", `attachment; filename="qr-codes.zip"`)
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

func (h *Handler) ArchiveBundle(c *gin.Context) {
	buf, ok := h.bundle(c)
	if !ok {
		return
	}

	key := archive.Key(security.GetOrganizationID(c), "qr", "qr-codes.zip")
	obj, err := h.archiver.Put(c.Request.Context(), key, "application/zip", buf.Bytes())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Unable to archive qr code bundle", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, obj)
}
