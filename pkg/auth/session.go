// Package auth holds the signed-in identity and the providers that produce
// it: the hosted GoTrue API, or a local bcrypt/JWT provider for the SQL and
// in-memory backends.
//
// Identity changes travel as Change values on an event.Dispatcher under
// EventName. An Identity subscribed to the dispatcher is the only place the
// current user is stored.
package auth

import (
	"errors"
	"fmt"
	"time"
)

// EventName is the dispatcher event carrying a Change payload.
const EventName = "auth.state_change"

// Auth change kinds.
const (
	InitialSession = "INITIAL_SESSION"
	SignedIn       = "SIGNED_IN"
	SignedOut      = "SIGNED_OUT"
	TokenRefreshed = "TOKEN_REFRESHED"
	UserUpdated    = "USER_UPDATED"
)

// Change is one identity-change notification. Session is nil for
// SIGNED_OUT and for an INITIAL_SESSION with nobody signed in.
type Change struct {
	Event   string
	Session *Session
}

// User is the authenticated principal.
type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone,omitempty"`
	Role         string                 `json:"role,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at,omitempty"`
}

// Session is a token pair plus the user it belongs to.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         *User  `json:"user"`
}

// normalize fills ExpiresAt from ExpiresIn when the server left it out.
func (s *Session) normalize(now time.Time) {
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		s.ExpiresAt = now.Unix() + s.ExpiresIn
	}
	if s.TokenType == "" {
		s.TokenType = "bearer"
	}
}

// Expired reports whether the access token is past (or within leeway of)
// its expiry. A session without an expiry never expires.
func (s *Session) Expired(now time.Time, leeway time.Duration) bool {
	if s == nil || s.ExpiresAt == 0 {
		return false
	}
	return now.Add(leeway).Unix() >= s.ExpiresAt
}

var (
	ErrInvalidCredentials = errors.New("auth: invalid login credentials")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidToken       = errors.New("auth: invalid or expired token")
	ErrNoSession          = errors.New("auth: no session")
)

// Error is a failure reported by the auth server.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("auth: %d: %s", e.Status, e.Message)
}

// Is maps server error codes onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidCredentials:
		return e.Code == "invalid_grant" || e.Code == "invalid_credentials"
	case ErrEmailTaken:
		return e.Code == "user_already_exists" || e.Code == "email_exists"
	case ErrInvalidToken:
		return e.Status == 401 || e.Code == "bad_jwt" || e.Code == "session_not_found"
	}
	return false
}
