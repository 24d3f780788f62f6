package users

import (
	"net/http"

	custom_error "shelf/pkg/errors"
	"shelf/pkg/models"
	"shelf/pkg/roles"
	"shelf/pkg/security"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type UsersHandler struct {
	Repository UserRepository
}

func NewHandler(r UserRepository) *UsersHandler {
	return &UsersHandler{
		Repository: r,
	}
}

func (h *UsersHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/users", security.Authorize(roles.Admin), h.RegisterUser)
	router.PATCH("/users/:id", security.Authorize(roles.SelfService), h.UpdateUser)
	router.GET("/users/:id", security.Authorize(roles.SelfService), h.GetUser)
	router.GET("/users", security.Authorize(roles.Admin), h.GetUserList)
	router.GET("/team-members", security.Authorize(roles.SelfService), h.GetTeamMembers)
	router.POST("/team-members", security.Authorize(roles.Admin), h.CreateTeamMember)
}

func (h *UsersHandler) RegisterUser(c *gin.Context) {
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if !security.IsAllowed(c, req.Role) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden", "details": "You cannot grant a role above your own"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user, err := h.Repository.PersistUser(c.Request.Context(), security.GetOrganizationID(c), req, hashedPassword)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Failed to create user", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UsersHandler) UpdateUser(c *gin.Context) {
	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	userID := c.Param("id")
	if !h.isAllowed(c, userID, roles.Admin) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden", "details": "You are not allowed to access this resource"})
		return
	}

	changes := &models.UserChanges{}

	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < minPasswordLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters long"})
			return
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		passwordHash := string(hashedPassword)
		changes.PasswordHash = &passwordHash
	}

	if req.Role != nil {
		if !security.IsAllowed(c, roles.Admin) || !security.IsAllowed(c, *req.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden", "details": "You cannot grant this role"})
			return
		}
		changes.Role = req.Role
	}

	ctx := c.Request.Context()
	orgID := security.GetOrganizationID(c)

	if changes.HasChanges() {
		if err := h.Repository.UpdateUser(ctx, orgID, userID, changes); err != nil {
			c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Failed to update user", "details": err.Error()})
			return
		}
	}

	user, err := h.Repository.GetUser(ctx, orgID, userID)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Unable to find user", "details": err.Error(), "code": "USER_NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UsersHandler) GetUser(c *gin.Context) {
	userID := c.Param("id")
	if !h.isAllowed(c, userID, roles.Admin) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden", "details": "You are not allowed to access this resource"})
		return
	}

	user, err := h.Repository.GetUser(c.Request.Context(), security.GetOrganizationID(c), userID)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Unable to find user", "details": err.Error(), "code": "USER_NOT_FOUND"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UsersHandler) GetUserList(c *gin.Context) {
	users, err := h.Repository.GetUsers(c.Request.Context(), security.GetOrganizationID(c))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not obtain list of users", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *UsersHandler) GetTeamMembers(c *gin.Context) {
	members, err := h.Repository.GetTeamMembers(c.Request.Context(), security.GetOrganizationID(c))
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Could not obtain list of team members", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, members)
}

func (h *UsersHandler) CreateTeamMember(c *gin.Context) {
	var req models.CreateTeamMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	member, err := h.Repository.PersistTeamMember(c.Request.Context(), security.GetOrganizationID(c), req)
	if err != nil {
		c.AbortWithStatusJSON(custom_error.StatusCode(err), gin.H{"error": "Failed to create team member", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, member)
}

// isAllowed lets users act on their own account and requiredRole on any account.
func (h *UsersHandler) isAllowed(c *gin.Context, userID string, requiredRole roles.Role) bool {
	authID := security.GetUserID(c)
	if authID == "" {
		return false
	}

	return authID == userID || security.IsAllowed(c, requiredRole)
}
