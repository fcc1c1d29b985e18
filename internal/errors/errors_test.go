package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusBadRequest},
		{CodeValidation, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := Conflict("the tag is assigned to one or more items")

	assert.True(t, Is(err, ErrConflict))
	assert.False(t, Is(err, ErrNotFound))

	wrapped := fmt.Errorf("delete tag: %w", err)
	assert.True(t, Is(wrapped, ErrConflict))
}

func TestError_WithCauseHidesCauseFromMessageOnly(t *testing.T) {
	cause := New("UNIQUE constraint failed: stores.name")
	err := Internal("failed to create store").WithCause(cause)

	assert.Equal(t, "failed to create store", err.Message)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
	assert.ErrorIs(t, err, cause)
}

func TestError_WithDetailsCopies(t *testing.T) {
	base := Validation("invalid request")
	withDetails := base.WithDetails(map[string]string{"name": "required"})

	assert.Nil(t, base.Details)
	assert.NotNil(t, withDetails.Details)
	assert.Equal(t, base.Code, withDetails.Code)
}
