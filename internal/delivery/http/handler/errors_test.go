package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	appErrors "aspire-wishlist/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", appErrors.Validation(), http.StatusBadRequest},
		{"conflict", appErrors.Conflict("Email already registered."), http.StatusConflict},
		{"authentication", appErrors.Auth("Invalid credentials."), http.StatusUnauthorized},
		{"mismatch", appErrors.Mismatch("Passwords do not match."), http.StatusBadRequest},
		{"policy", appErrors.Policy("Email already verified."), http.StatusUnprocessableEntity},
		{"not found", appErrors.NotFound("Wishlist not found."), http.StatusNotFound},
		{"expired", appErrors.Expired("Reset token has expired."), http.StatusBadRequest},
		{"invalid", appErrors.Invalid("Reset token is invalid."), http.StatusBadRequest},
		{"unauthorized", appErrors.Unauthorized("Invalid access code."), http.StatusForbidden},
		{"wrapped", fmt.Errorf("redeem: %w", appErrors.NotFound("Token not found.")), http.StatusNotFound},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRespondWithErrorHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wishlists", nil)

	respondWithError(c, errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
}

func TestPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, raw := range []string{"0", "-3", "abc", ""} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		_, ok := pathID(c, "id")
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusNotFound, w.Code, raw)
	}
}
