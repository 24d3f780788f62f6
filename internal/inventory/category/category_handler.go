package category

import (
	"net/http"

	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"
	"shelf/pkg/roles"
	"shelf/pkg/security"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	repository *CategoryRepository
}

func NewCategoryHandler(r *CategoryRepository) *CategoryHandler {
	return &CategoryHandler{repository: r}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/categories", security.Authorize(roles.SelfService), h.GetCategories)
	router.POST("/categories", security.Authorize(roles.Admin), h.CreateCategory)
	router.DELETE("/categories/:id", security.Authorize(roles.Admin), h.RemoveCategory)
}

func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.repository.GetCategories(c.Request.Context(), security.GetOrganizationID(c))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not list categories", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	category, err := h.repository.PersistCategory(c.Request.Context(), security.GetOrganizationID(c), req)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not create category", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) RemoveCategory(c *gin.Context) {
	err := h.repository.DeleteCategory(c.Request.Context(), security.GetOrganizationID(c), c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not delete category", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
