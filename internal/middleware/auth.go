package middleware

import (
	"net/http"
	"strings"

	"aspire-wishlist/internal/config"
	appErrors "aspire-wishlist/pkg/errors"
	"aspire-wishlist/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey = "userID"
	EmailKey  = "email"
	RolesKey  = "roles"
)

func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthenticated(c, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthenticated(c, "Invalid authorization header format")
			return
		}

		claims, err := utils.ValidateToken(strings.TrimSpace(parts[1]), cfg.JWT.Secret)
		if err != nil {
			unauthenticated(c, "Invalid or expired token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Set(RolesKey, claims.Roles)

		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id set by AuthMiddleware.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func unauthenticated(c *gin.Context, message string) {
	utils.AppErrorResponse(c, http.StatusUnauthorized, appErrors.Auth(message))
	c.Abort()
}
