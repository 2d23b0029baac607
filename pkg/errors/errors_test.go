package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorIsMatchesByCode(t *testing.T) {
	err := Policy("Wishlist must have an access code to allow hidden items.")

	assert.True(t, errors.Is(err, ErrPolicy))
	assert.False(t, errors.Is(err, ErrValidation))

	wrapped := fmt.Errorf("create item: %w", err)
	assert.True(t, errors.Is(wrapped, ErrPolicy))
	assert.Equal(t, CodePolicy, CodeOf(wrapped))
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewAppError(CodeNotFound, "user not found", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "user not found: connection refused", err.Error())
}

func TestValidationErrorMessageListsFields(t *testing.T) {
	err := Validation(
		FieldError{Field: "email", Code: "invalid_email"},
		FieldError{Field: "password", Code: "too_short"},
	)

	assert.Equal(t, "Invalid input (email:invalid_email, password:too_short)", err.Error())
	assert.Len(t, err.Fields, 2)
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, "", CodeOf(errors.New("boom")))
}
