package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/catalogctl/internal/client/models"
	"github.com/dmitrijs2005/catalogctl/internal/common"
	"github.com/dmitrijs2005/catalogctl/internal/logging"
	"github.com/dmitrijs2005/catalogctl/internal/netx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// refreshMargin makes a session that is about to expire count as expired.
const refreshMargin = 10 * time.Second

// SessionStore persists the current session between runs.
type SessionStore interface {
	// Load returns nil, nil when nothing is stored.
	Load(ctx context.Context) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	Clear(ctx context.Context) error
}

// AuthClient talks to a GoTrue-compatible auth provider and owns the
// provider-side copy of the current session.
type AuthClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	store   SessionStore
	bus     *Broadcaster
	log     logging.Logger
	now     func() time.Time

	mu      sync.Mutex
	session *models.Session
	loaded  bool
}

type AuthOption func(*AuthClient)

func WithAuthHTTPClient(c *http.Client) AuthOption {
	return func(a *AuthClient) { a.http = c }
}

func WithAuthLogger(l logging.Logger) AuthOption {
	return func(a *AuthClient) { a.log = l }
}

func WithClock(now func() time.Time) AuthOption {
	return func(a *AuthClient) { a.now = now }
}

// NewAuthClient returns a client for the provider at authURL. store may be
// nil, in which case sessions live in memory only.
func NewAuthClient(authURL, apiKey string, store SessionStore, opts ...AuthOption) *AuthClient {
	a := &AuthClient{
		baseURL: strings.TrimRight(authURL, "/") + "/auth/v1",
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		bus:     NewBroadcaster(),
		log:     logging.Nop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Subscribe acquires the auth event stream. The caller must Close it.
func (a *AuthClient) Subscribe() *Subscription {
	return a.bus.Subscribe()
}

// GetSession returns the current session, loading it from the store on
// first use and refreshing it when expired. A nil session means signed out.
func (a *AuthClient) GetSession(ctx context.Context) (*models.Session, error) {
	a.mu.Lock()
	first := !a.loaded
	if first {
		if a.store != nil {
			s, err := a.store.Load(ctx)
			if err != nil {
				a.log.Warn(ctx, "stored session unreadable", "error", err)
			} else {
				a.session = s
			}
		}
		a.loaded = true
	}
	current := a.session.Clone()
	a.mu.Unlock()

	if current != nil && current.Expired(a.now().Add(refreshMargin)) {
		return a.refresh(ctx, current)
	}

	if first {
		a.bus.Publish(ctx, models.AuthEvent{Kind: models.EventInitialSession, Session: current.Clone()})
	}
	return current, nil
}

func (a *AuthClient) refresh(ctx context.Context, old *models.Session) (*models.Session, error) {
	if old.RefreshToken == "" {
		a.drop(ctx)
		return nil, nil
	}

	var s models.Session
	err := a.call(ctx, http.MethodPost, "/token?grant_type=refresh_token", "",
		map[string]string{"refresh_token": old.RefreshToken}, &s)
	if err != nil {
		var ae *AuthError
		if errors.As(err, &ae) {
			a.log.Info(ctx, "refresh rejected, signing out", "status", ae.StatusCode)
			a.drop(ctx)
			return nil, nil
		}
		return nil, err
	}

	a.establish(ctx, &s)
	a.bus.Publish(ctx, models.AuthEvent{Kind: models.EventTokenRefreshed, Session: s.Clone()})
	return s.Clone(), nil
}

func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	var s models.Session
	err := a.call(ctx, http.MethodPost, "/token?grant_type=password", "",
		map[string]string{"email": email, "password": password}, &s)
	if err != nil {
		return nil, err
	}

	a.establish(ctx, &s)
	a.bus.Publish(ctx, models.AuthEvent{Kind: models.EventSignedIn, Session: s.Clone()})
	return s.Clone(), nil
}

// SignOut revokes the session at the provider and forgets it locally. A
// provider that no longer knows the session does not block the sign-out.
func (a *AuthClient) SignOut(ctx context.Context) error {
	a.mu.Lock()
	current := a.session.Clone()
	a.mu.Unlock()

	if current != nil {
		err := a.call(ctx, http.MethodPost, "/logout", current.AccessToken, nil, nil)
		var ae *AuthError
		switch {
		case err == nil:
		case errors.As(err, &ae) && (ae.StatusCode == http.StatusUnauthorized ||
			ae.StatusCode == http.StatusForbidden || ae.StatusCode == http.StatusNotFound):
			a.log.Debug(ctx, "session already gone at provider", "status", ae.StatusCode)
		default:
			return err
		}
	}

	a.drop(ctx)
	return nil
}

// ResetPasswordForEmail asks the provider to send a recovery link that
// returns to redirectTo.
func (a *AuthClient) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	path := "/recover"
	if redirectTo != "" {
		path += "?redirect_to=" + url.QueryEscape(redirectTo)
	}
	return a.call(ctx, http.MethodPost, path, "", map[string]string{"email": email}, nil)
}

func (a *AuthClient) UpdateUserPassword(ctx context.Context, password string) error {
	a.mu.Lock()
	current := a.session.Clone()
	a.mu.Unlock()
	if current == nil {
		return ErrNoSession
	}

	var u models.User
	if err := a.call(ctx, http.MethodPut, "/user", current.AccessToken,
		map[string]string{"password": password}, &u); err != nil {
		return err
	}

	a.mu.Lock()
	if a.session != nil && a.session.AccessToken == current.AccessToken {
		if u.ID != "" {
			a.session.User = u
		}
		current = a.session.Clone()
	}
	a.mu.Unlock()

	a.bus.Publish(ctx, models.AuthEvent{Kind: models.EventUserUpdated, Session: current})
	return nil
}

// SetSessionFromLink adopts the tokens carried by an e-mailed link.
func (a *AuthClient) SetSessionFromLink(ctx context.Context, link models.Link) (*models.Session, error) {
	if !link.HasTokens() {
		return nil, common.ErrLinkRejected
	}

	s := link.Session()
	a.establish(ctx, s)

	a.bus.Publish(ctx, models.AuthEvent{Kind: models.EventSignedIn, Session: s.Clone()})
	if link.IsRecovery() {
		a.bus.Publish(ctx, models.AuthEvent{Kind: models.EventPasswordRecovery, Session: s.Clone()})
	}
	return s.Clone(), nil
}

// establish completes s from its token claims, persists it and makes it
// current.
func (a *AuthClient) establish(ctx context.Context, s *models.Session) {
	a.fillFromClaims(s)
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		s.ExpiresAt = a.now().Add(time.Duration(s.ExpiresIn) * time.Second).Unix()
	}

	if a.store != nil {
		if err := a.store.Save(ctx, s); err != nil {
			a.log.Warn(ctx, "session not persisted", "error", err)
		}
	}

	a.mu.Lock()
	a.session = s.Clone()
	a.loaded = true
	a.mu.Unlock()
}

func (a *AuthClient) drop(ctx context.Context) {
	a.mu.Lock()
	a.session = nil
	a.loaded = true
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Clear(ctx); err != nil {
			a.log.Warn(ctx, "stored session not cleared", "error", err)
		}
	}
	a.bus.Publish(ctx, models.AuthEvent{Kind: models.EventSignedOut})
}

// fillFromClaims reads expiry and identity from the access token. The
// signature is the provider's concern; opaque tokens are left alone.
func (a *AuthClient) fillFromClaims(s *models.Session) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.AccessToken, claims); err != nil {
		return
	}
	if s.ExpiresAt == 0 {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			s.ExpiresAt = exp.Unix()
		}
	}
	if s.User.ID == "" {
		if sub, err := claims.GetSubject(); err == nil {
			s.User.ID = sub
		}
	}
	if s.User.Email == "" {
		if email, ok := claims["email"].(string); ok {
			s.User.Email = email
		}
	}
}

func (a *AuthClient) call(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set(common.APIKeyHeaderName, a.apiKey)
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		a.log.Warn(ctx, "auth request failed", "path", req.URL.Path, "error", err)
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	if !netx.IsSuccess(resp) {
		return newAuthError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode auth response: %v", ErrUnavailable, err)
	}
	return nil
}

// newAuthError reads the provider's error body. GoTrue has used several
// shapes over time; the first non-empty message field wins.
func newAuthError(resp *http.Response) *AuthError {
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
		ErrorCode        string `json:"error_code"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(data, &body)

	ae := &AuthError{StatusCode: resp.StatusCode, Code: body.ErrorCode}
	for _, m := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
		if m != "" {
			ae.Message = m
			break
		}
	}
	if ae.Message == "" {
		ae.Message = http.StatusText(resp.StatusCode)
	}
	if ae.Code == "" {
		ae.Code = body.Error
	}
	return ae
}
