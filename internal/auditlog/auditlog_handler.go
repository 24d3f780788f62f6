package auditlog

import (
	"net/http"

	custom_error "shelf/pkg/errors"
	"shelf/pkg/roles"
	"shelf/pkg/security"

	"github.com/gin-gonic/gin"
)

type AuditLogHandler struct {
	repository *AuditLogRepository
}

func NewHandler(r *AuditLogRepository) *AuditLogHandler {
	return &AuditLogHandler{repository: r}
}

func (h *AuditLogHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit-logs/:type/:id", security.Authorize(roles.Admin), h.GetResourceLog)
}

func (h *AuditLogHandler) GetResourceLog(c *gin.Context) {
	logs, err := h.repository.GetResourceLog(c.Request.Context(), security.GetOrganizationID(c), c.Param("type"), c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not get audit log", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, logs)
}
