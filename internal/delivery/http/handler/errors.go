package handler

import (
	"errors"
	"net/http"
	"strconv"

	"aspire-wishlist/internal/logger"
	"aspire-wishlist/internal/middleware"
	appErrors "aspire-wishlist/pkg/errors"
	"aspire-wishlist/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var statusByCode = map[string]int{
	appErrors.CodeValidation:   http.StatusBadRequest,
	appErrors.CodeConflict:     http.StatusConflict,
	appErrors.CodeAuth:         http.StatusUnauthorized,
	appErrors.CodeMismatch:     http.StatusBadRequest,
	appErrors.CodePolicy:       http.StatusUnprocessableEntity,
	appErrors.CodeNotFound:     http.StatusNotFound,
	appErrors.CodeExpired:      http.StatusBadRequest,
	appErrors.CodeInvalid:      http.StatusBadRequest,
	appErrors.CodeUnauthorized: http.StatusForbidden,
	appErrors.CodeForbidden:    http.StatusForbidden,
}

// StatusFor maps an error kind to its HTTP status. Unknown errors are 500.
func StatusFor(err error) int {
	if status, ok := statusByCode[appErrors.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		if status, ok := statusByCode[appErr.Code]; ok {
			utils.AppErrorResponse(c, status, appErr)
			return
		}
	}

	logger.Error("Internal server error",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
}

func respondWithBindError(c *gin.Context) {
	utils.AppErrorResponse(c, http.StatusBadRequest, appErrors.NewAppError(appErrors.CodeValidation, "Invalid request body", nil))
}

// currentUserID aborts with 401 when AuthMiddleware did not run.
func currentUserID(c *gin.Context) (int64, bool) {
	id, ok := middleware.CurrentUserID(c)
	if !ok {
		utils.AppErrorResponse(c, http.StatusUnauthorized, appErrors.Auth("User not authenticated"))
		return 0, false
	}
	return id, true
}

// pathID parses a positive integer path parameter, answering 404 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.AppErrorResponse(c, http.StatusNotFound, appErrors.NotFound("Resource not found."))
		return 0, false
	}
	return id, true
}
