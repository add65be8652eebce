package models

import "time"

// User is the subset of the auth provider's user record the console needs.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the credential issued by the auth provider.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	// ExpiresAt is a unix timestamp in seconds.
	ExpiresAt int64 `json:"expires_at"`
	User      User  `json:"user"`
}

// Expiry returns ExpiresAt as time; the zero time means "unknown".
func (s *Session) Expiry() time.Time {
	if s == nil || s.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(s.ExpiresAt, 0)
}

// Expired reports whether the session is past its expiry at now.
// A session with unknown expiry never expires locally.
func (s *Session) Expired(now time.Time) bool {
	exp := s.Expiry()
	return !exp.IsZero() && !now.Before(exp)
}

// Clone returns a copy that does not share memory with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// AuthEventKind names an auth state change emitted by the provider.
type AuthEventKind string

const (
	EventInitialSession   AuthEventKind = "INITIAL_SESSION"
	EventSignedIn         AuthEventKind = "SIGNED_IN"
	EventSignedOut        AuthEventKind = "SIGNED_OUT"
	EventTokenRefreshed   AuthEventKind = "TOKEN_REFRESHED"
	EventUserUpdated      AuthEventKind = "USER_UPDATED"
	EventPasswordRecovery AuthEventKind = "PASSWORD_RECOVERY"
)

// AuthEvent pairs a kind with the session current after the change;
// Session is nil once signed out.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}
