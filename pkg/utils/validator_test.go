package utils

import (
	"strings"
	"testing"

	appErrors "aspire-wishlist/pkg/errors"

	"github.com/stretchr/testify/assert"
)

type credentialsInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=255,notcompromised"`
}

type namedInput struct {
	Name string `json:"name" validate:"required,notblank,max=255"`
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	fields := ValidateStruct(&credentialsInput{Email: "nope", Password: "short"})

	assert.ElementsMatch(t, []appErrors.FieldError{
		{Field: "email", Code: "invalid_email"},
		{Field: "password", Code: "too_short"},
	}, fields)
}

func TestValidateStructPasswordPolicy(t *testing.T) {
	assert.Nil(t, ValidateStruct(&credentialsInput{Email: "a@example.com", Password: "password123"}))

	fields := ValidateStruct(&credentialsInput{Email: "a@example.com", Password: "password"})
	assert.Equal(t, []appErrors.FieldError{{Field: "password", Code: "compromised"}}, fields)

	fields = ValidateStruct(&credentialsInput{Email: "a@example.com", Password: strings.Repeat("x", 256)})
	assert.Equal(t, []appErrors.FieldError{{Field: "password", Code: "too_long"}}, fields)
}

func TestValidateStructNotBlank(t *testing.T) {
	fields := ValidateStruct(&namedInput{Name: "   "})
	assert.Equal(t, []appErrors.FieldError{{Field: "name", Code: "blank"}}, fields)

	assert.Nil(t, ValidateStruct(&namedInput{Name: "Gifts"}))
}

func TestValidateInputReturnsValidationError(t *testing.T) {
	err := ValidateInput(&namedInput{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.NoError(t, ValidateInput(&namedInput{Name: "Gifts"}))
}
