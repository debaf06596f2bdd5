package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHTTPError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantKind  Kind
		retryable bool
	}{
		{"bad request is client", http.StatusBadRequest, KindClient, false},
		{"forbidden is permission", http.StatusForbidden, KindPermission, false},
		{"not found is its own kind", http.StatusNotFound, KindNotFound, false},
		{"too many requests is client", http.StatusTooManyRequests, KindClient, false},
		{"internal error is server", http.StatusInternalServerError, KindServer, true},
		{"bad gateway is server", http.StatusBadGateway, KindServer, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewHTTPError(tt.status, "body")
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, tt.status, err.StatusCode)
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestTransportErrorsAreRetryable(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := NewTransportError("request failed", cause)

	assert.True(t, IsRetryable(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsClientError(err))
}

func TestWrappedErrorsKeepTheirKind(t *testing.T) {
	inner := NewHTTPError(http.StatusNotFound, "")
	wrapped := fmt.Errorf("fetching ticket 42: %w", inner)

	assert.True(t, IsNotFound(wrapped))
	assert.True(t, IsClientError(wrapped))
	assert.False(t, IsRetryable(wrapped))
}

func TestInvalidObjectError(t *testing.T) {
	err := NewInvalidObjectError("Tasks", 17, "required relation projectID unresolved", nil)
	wrapped := fmt.Errorf("mapping failed: %w", err)

	assert.True(t, IsInvalidObject(wrapped))
	assert.Contains(t, err.Error(), "Tasks")
	assert.Contains(t, err.Error(), "17")
	assert.False(t, IsInvalidObject(fmt.Errorf("plain")))
}
