package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", BadRequest("x"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("x"), http.StatusUnauthorized},
		{"forbidden", Forbidden("x"), http.StatusForbidden},
		{"not found", NotFound("x"), http.StatusNotFound},
		{"conflict", Conflict("x"), http.StatusConflict},
		{"internal", Internal("x", errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", NotFound("gone")), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMessageHidesCause(t *testing.T) {
	err := Internal("Failed to fetch posts", errors.New("connection refused"))

	assert.Equal(t, "Failed to fetch posts", Message(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "Internal server error", Message(errors.New("raw")))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrap: %w", Conflict("Email already exists"))

	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, "conflict", KindOf(err).String())
}
