package authsync

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/granjalink/farm-backend-go/internal/client"
)

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"api 401", &client.APIError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "Not authenticated"}, true},
		{"api session expired", fmt.Errorf("list pigs: %w", &client.APIError{Status: http.StatusUnauthorized, Code: "SESSION_EXPIRED"}), true},
		{"api 403 role check", &client.APIError{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: "token holder lacks permission"}, false},
		{"api 500 mentioning session", &client.APIError{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: "session table locked"}, false},
		{"sentinel", fmt.Errorf("refresh session: %w", client.ErrNotAuthenticated), true},
		{"jwt marker", errors.New("JWT expired"), true},
		{"invalid claim", errors.New("invalid claim: exp"), true},
		{"status text", errors.New("unexpected status 401"), true},
		{"network", errors.New("dial tcp: connection refused"), false},
		{"not found", errors.New("pig not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthError(tt.err))
		})
	}
}

func TestIsSessionExpired(t *testing.T) {
	assert.True(t, IsSessionExpired(&client.APIError{Status: http.StatusUnauthorized, Code: "SESSION_EXPIRED"}))
	assert.True(t, IsSessionExpired(errors.New("invalid refresh_token")))
	assert.False(t, IsSessionExpired(&client.APIError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "bad refresh_token"}))
	assert.False(t, IsSessionExpired(errors.New("timeout")))
	assert.False(t, IsSessionExpired(nil))
}

func TestDecide(t *testing.T) {
	authErr := &client.APIError{Status: http.StatusUnauthorized}
	other := errors.New("boom")

	assert.Equal(t, actionRetry, decide(authErr, 0))
	assert.Equal(t, actionReset, decide(authErr, 1))
	assert.Equal(t, actionReset, decide(authErr, 2))
	assert.Equal(t, actionFail, decide(other, 0))
	assert.Equal(t, actionFail, decide(other, 1))
	assert.Equal(t, "retry", actionRetry.String())
}
