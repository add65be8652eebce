package models

import (
	"net/url"
	"strconv"
	"strings"
)

// Link types that route the console to the set-password view.
const (
	LinkTypeInvite   = "invite"
	LinkTypeRecovery = "recovery"
)

// ErrorCodeOTPExpired marks an expired or already used e-mail link.
const ErrorCodeOTPExpired = "otp_expired"

// Link is the parsed fragment of an invite/recovery/magic link.
type Link struct {
	Type             string
	Error            string
	ErrorCode        string
	ErrorDescription string

	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64
	ExpiresAt    int64
}

// ParseLink accepts a full URL ("https://host/#a=b"), a bare fragment
// ("#a=b") or just the parameters ("a=b&c=d"). Query parameters are merged
// under the fragment so error links delivered either way are recognized.
// An empty string yields the zero Link.
func ParseLink(raw string) (Link, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Link{}, nil
	}

	values := url.Values{}
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return Link{}, err
		}
		for k, v := range u.Query() {
			values[k] = v
		}
		raw = u.Fragment
	}

	fragment, err := url.ParseQuery(strings.TrimPrefix(raw, "#"))
	if err != nil {
		return Link{}, err
	}
	for k, v := range fragment {
		values[k] = v
	}

	l := Link{
		Type:             values.Get("type"),
		Error:            values.Get("error"),
		ErrorCode:        values.Get("error_code"),
		ErrorDescription: values.Get("error_description"),
		AccessToken:      values.Get("access_token"),
		RefreshToken:     values.Get("refresh_token"),
		TokenType:        values.Get("token_type"),
	}
	l.ExpiresIn, _ = strconv.ParseInt(values.Get("expires_in"), 10, 64)
	l.ExpiresAt, _ = strconv.ParseInt(values.Get("expires_at"), 10, 64)

	return l, nil
}

// HasError reports whether the link carries an error indicator.
func (l Link) HasError() bool {
	return l.ErrorCode != "" || l.Error != ""
}

// IsExpired reports an expired or already consumed one-time link.
func (l Link) IsExpired() bool {
	return l.ErrorCode == ErrorCodeOTPExpired
}

// IsRecovery reports an invite or password recovery flow.
func (l Link) IsRecovery() bool {
	return l.Type == LinkTypeInvite || l.Type == LinkTypeRecovery
}

// HasTokens reports whether the link carries a session.
func (l Link) HasTokens() bool {
	return l.AccessToken != ""
}

// Session builds the session carried by the link; nil without tokens.
func (l Link) Session() *Session {
	if !l.HasTokens() {
		return nil
	}
	tokenType := l.TokenType
	if tokenType == "" {
		tokenType = "bearer"
	}
	return &Session{
		AccessToken:  l.AccessToken,
		RefreshToken: l.RefreshToken,
		TokenType:    tokenType,
		ExpiresIn:    l.ExpiresIn,
		ExpiresAt:    l.ExpiresAt,
	}
}
