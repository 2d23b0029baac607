package utils

import (
	appErrors "aspire-wishlist/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope returned by every endpoint.
type Response struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type ErrorBody struct {
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message"`
	Fields  []appErrors.FieldError `json:"fields,omitempty"`
}

func SuccessResponse(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Success: false,
		Message: message,
		Error:   &ErrorBody{Message: message},
	})
}

// AppErrorResponse writes an AppError with its code and field list.
func AppErrorResponse(c *gin.Context, status int, err *appErrors.AppError) {
	c.JSON(status, Response{
		Success: false,
		Message: err.Message,
		Error: &ErrorBody{
			Code:    err.Code,
			Message: err.Message,
			Fields:  err.Fields,
		},
	})
}
