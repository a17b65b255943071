package auth

import "time"

// Identity is the authenticated principal, independent of profile data.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Session is the token set issued for an identity. Tokens are replaced wholesale on refresh.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         Identity  `json:"user"`
}

// Expired reports whether the access token is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
)

// Event is pushed by the auth provider whenever the session changes.
type Event struct {
	Type    EventType `json:"type"`
	Session *Session  `json:"session,omitempty"`
}

type ErrorKind string

const (
	ErrorKindSessionExpired     ErrorKind = "session_expired"
	ErrorKindNetwork            ErrorKind = "network_error"
	ErrorKindProfileFetchFailed ErrorKind = "profile_fetch_failed"
	ErrorKindUnknown            ErrorKind = "unknown"
)

// AuthError is the structured error kept in the session store for the UI banner.
type AuthError struct {
	Kind        ErrorKind `json:"code"`
	Message     string    `json:"message"`
	Recoverable bool      `json:"recoverable"`
}

func (e *AuthError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// RefreshToken is the stored record of an issued refresh token. Only the hash is persisted.
type RefreshToken struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
	UserAgent string
	IPAddress string
	CreatedAt time.Time
}

// Active reports whether the token can still be exchanged at now.
func (t RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}
