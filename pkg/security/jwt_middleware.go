package security

import (
	"net/http"
	"strings"

	"shelf/pkg/auditlog"
	"shelf/pkg/roles"

	"github.com/gin-gonic/gin"
)

const (
	contextUserID         = "userID"
	contextOrganizationID = "organizationID"
	contextRole           = "role"
)

// JWTMiddleware validates JWT and extracts claims.
func JWTMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing"})
			return
		}

		claims, err := parseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil || claims.OrganizationID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Set(contextOrganizationID, claims.OrganizationID)
		c.Set(contextRole, claims.Role)
		c.Request = c.Request.WithContext(auditlog.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// Authorize ensures the user has at least the required role.
func Authorize(requiredRole roles.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAllowed(c, requiredRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
			return
		}

		c.Next()
	}
}

func IsAllowed(c *gin.Context, requiredRole roles.Role) bool {
	return GetRole(c).HasPermission(requiredRole)
}

func GetRole(c *gin.Context) roles.Role {
	role, _ := c.Get(contextRole)
	userRole, _ := role.(roles.Role)
	return userRole
}

// GetOrganizationID returns the organization every query of the request is scoped to.
func GetOrganizationID(c *gin.Context) string {
	return c.GetString(contextOrganizationID)
}

func GetUserID(c *gin.Context) string {
	return c.GetString(contextUserID)
}

// SetIdentity stores claims on the context the way JWTMiddleware does. Used by
// tests and internal callers that authenticate by other means.
func SetIdentity(c *gin.Context, userID, organizationID string, role roles.Role) {
	c.Set(contextUserID, userID)
	c.Set(contextOrganizationID, organizationID)
	c.Set(contextRole, role)
}
