package middleware

import (
	"net/http"
	"slices"

	domainUser "aspire-wishlist/internal/domain/user"
	appErrors "aspire-wishlist/pkg/errors"
	"aspire-wishlist/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through when the token carries any of
// allowedRoles.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(RolesKey)
		if !exists {
			forbidden(c, "Role not found in context")
			return
		}

		roles, _ := value.([]string)
		for _, allowedRole := range allowedRoles {
			if slices.Contains(roles, allowedRole) {
				c.Next()
				return
			}
		}

		forbidden(c, "Insufficient permissions")
	}
}

func StaffOnly() gin.HandlerFunc {
	return RequireRole(domainUser.RoleStaff)
}

func forbidden(c *gin.Context, message string) {
	utils.AppErrorResponse(c, http.StatusForbidden, appErrors.NewAppError(appErrors.CodeForbidden, message, nil))
	c.Abort()
}
