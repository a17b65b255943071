package authsync

import (
	"errors"
	"net/http"
	"strings"

	"github.com/granjalink/farm-backend-go/internal/client"
)

// authMarkers flag an untyped error as a session problem.
var authMarkers = []string{
	"jwt",
	"token",
	"401",
	"403",
	"not authenticated",
	"session",
	"refresh_token",
	"invalid claim",
}

// IsAuthError reports whether err means the session is missing or no longer valid.
// An API answer is judged by its status and code alone, so a 403 from a role check
// is not a session problem. Errors without a typed answer fall back to message markers.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			return true
		case apiErr.Code == "SESSION_EXPIRED", apiErr.Code == "UNAUTHORIZED":
			return true
		}
		return false
	}
	if errors.Is(err, client.ErrNotAuthenticated) || errors.Is(err, client.ErrInvalidRefreshToken) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range authMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsSessionExpired reports whether a refresh failed because the refresh token itself was rejected.
func IsSessionExpired(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, client.ErrInvalidRefreshToken) {
		return true
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return false
	}
	return strings.Contains(err.Error(), "refresh_token")
}

type action int

const (
	actionFail action = iota
	actionRetry
	actionReset
)

func (a action) String() string {
	switch a {
	case actionRetry:
		return "retry"
	case actionReset:
		return "reset"
	default:
		return "fail"
	}
}

// maxAuthRetries is how many times an auth-shaped failure is retried before the session is dropped.
const maxAuthRetries = 1

// decide picks what follows a failed attempt. attempt counts from zero.
func decide(err error, attempt int) action {
	if !IsAuthError(err) {
		return actionFail
	}
	if attempt < maxAuthRetries {
		return actionRetry
	}
	return actionReset
}
