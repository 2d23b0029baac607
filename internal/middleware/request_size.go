package middleware

import (
	"net/http"

	appErrors "aspire-wishlist/pkg/errors"
	"aspire-wishlist/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DefaultMaxRequestSize covers the largest body the API accepts, an item with
// a full description, with room to spare.
const DefaultMaxRequestSize = 1 << 20

// RequestSizeLimitMiddleware rejects bodies over maxSize bytes. A declared
// Content-Length is refused up front; chunked bodies fail on read.
func RequestSizeLimitMiddleware(maxSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			utils.AppErrorResponse(c, http.StatusRequestEntityTooLarge,
				appErrors.NewAppError(appErrors.CodeValidation, "Request body too large", nil))
			c.Abort()
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}
		c.Next()
	}
}
