package errors

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeAuth         = "AUTHENTICATION_FAILED"
	CodeMismatch     = "MISMATCH"
	CodePolicy       = "POLICY_VIOLATION"
	CodeNotFound     = "NOT_FOUND"
	CodeExpired      = "TOKEN_EXPIRED"
	CodeInvalid      = "TOKEN_INVALID"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
)

// Kind sentinels. Any AppError carrying the same code matches them with errors.Is.
var (
	ErrValidation   = &AppError{Code: CodeValidation, Message: "invalid input"}
	ErrConflict     = &AppError{Code: CodeConflict, Message: "resource already exists"}
	ErrAuth         = &AppError{Code: CodeAuth, Message: "authentication failed"}
	ErrMismatch     = &AppError{Code: CodeMismatch, Message: "values do not match"}
	ErrPolicy       = &AppError{Code: CodePolicy, Message: "operation not allowed"}
	ErrNotFound     = &AppError{Code: CodeNotFound, Message: "resource not found"}
	ErrExpired      = &AppError{Code: CodeExpired, Message: "token has expired"}
	ErrInvalid      = &AppError{Code: CodeInvalid, Message: "token is invalid"}
	ErrUnauthorized = &AppError{Code: CodeUnauthorized, Message: "unauthorized access"}
	ErrForbidden    = &AppError{Code: CodeForbidden, Message: "insufficient permissions"}
)

// FieldError is a single failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Code  string `json:"code"`
}

type AppError struct {
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+":"+f.Code)
		}
		return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, ", "))
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same kind.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Validation(fields ...FieldError) *AppError {
	return &AppError{Code: CodeValidation, Message: "Invalid input", Fields: fields}
}

func Conflict(message string) *AppError {
	return NewAppError(CodeConflict, message, nil)
}

func Auth(message string) *AppError {
	return NewAppError(CodeAuth, message, nil)
}

func Mismatch(message string) *AppError {
	return NewAppError(CodeMismatch, message, nil)
}

func Policy(message string) *AppError {
	return NewAppError(CodePolicy, message, nil)
}

func NotFound(message string) *AppError {
	return NewAppError(CodeNotFound, message, nil)
}

func Expired(message string) *AppError {
	return NewAppError(CodeExpired, message, nil)
}

func Invalid(message string) *AppError {
	return NewAppError(CodeInvalid, message, nil)
}

func Unauthorized(message string) *AppError {
	return NewAppError(CodeUnauthorized, message, nil)
}

// CodeOf returns the code of the first AppError in err's chain, or "" if none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
