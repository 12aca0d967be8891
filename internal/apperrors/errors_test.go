package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	assert.Equal(t, "[NOT_FOUND] Recipe not found", New(CodeNotFound, "Recipe not found").Error())

	cause := errors.New("connection reset")
	err := Wrap(CodeUpstream, "image recognition failed", cause)
	assert.Equal(t, "[UPSTREAM_ERROR] image recognition failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", New(CodeValidation, "bad"))
	assert.Equal(t, CodeValidation, CodeOf(wrapped))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:    http.StatusBadRequest,
		CodeNotFound:      http.StatusNotFound,
		CodeNotConfigured: http.StatusServiceUnavailable,
		CodeUpstream:      http.StatusBadGateway,
		CodeRateLimited:   http.StatusTooManyRequests,
		CodeInternal:      http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), code)
	}
	assert.True(t, Retryable(CodeNotConfigured))
	assert.False(t, Retryable(CodeValidation))
}
