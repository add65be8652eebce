package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/catalogctl/internal/client/client"
	"github.com/dmitrijs2005/catalogctl/internal/client/models"
	"github.com/dmitrijs2005/catalogctl/internal/client/translate"
	"github.com/dmitrijs2005/catalogctl/internal/common"
	"github.com/dmitrijs2005/catalogctl/internal/logging"
)

// User-facing session messages.
const (
	MsgLinkExpired          = "Link expirado ou já utilizado. Solicite um novo."
	MsgLinkInvalid          = "Erro ao verificar o link de convite."
	MsgSignedIn             = "Login realizado com sucesso!"
	MsgSignInFailed         = "Erro ao fazer login"
	MsgEmailRequired        = "Por favor, digite seu email primeiro."
	MsgRecoveryEmailSent    = "Email de recuperação enviado! Verifique sua caixa de entrada."
	MsgRecoveryEmailFailed  = "Erro ao enviar email: "
	MsgPasswordUpdated      = "Senha atualizada com sucesso!"
	MsgPasswordUpdateFailed = "Erro ao atualizar senha"
	MsgPasswordMismatch     = "As senhas não coincidem!"
	MsgPasswordTooShort     = "A senha deve ter pelo menos 6 caracteres."
)

const (
	DefaultReloadDelay = 2 * time.Second
	MinPasswordLength  = 6
)

var ErrAlreadyStarted = errors.New("session manager already started")

// AuthProvider is the auth surface the session manager consumes.
type AuthProvider interface {
	Subscribe() *client.Subscription
	GetSession(ctx context.Context) (*models.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error
	UpdateUserPassword(ctx context.Context, password string) error
	SetSessionFromLink(ctx context.Context, link models.Link) (*models.Session, error)
}

type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticated
	StateRecoveringPassword
)

func (s SessionState) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateRecoveringPassword:
		return "recovering-password"
	default:
		return "unauthenticated"
	}
}

// View is the screen the console routes to.
type View int

const (
	ViewLogin View = iota
	ViewSetPassword
	ViewDashboard
)

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

// SessionManager is the process-wide session context. It starts empty and
// unauthenticated; the stored session changes only through provider events
// or explicit user actions.
type SessionManager struct {
	auth        AuthProvider
	notify      Notifier
	log         logging.Logger
	redirectTo  string
	reloadDelay time.Duration
	reload      func()
	afterFunc   func(time.Duration, func()) Stopper
	onChange    func()

	mu         sync.RWMutex
	session    *models.Session
	recovering bool

	started   bool
	sub       *client.Subscription
	loopDone  chan struct{}
	syncReq   chan chan struct{}
	timer     Stopper
	closeOnce sync.Once
}

type SessionOption func(*SessionManager)

// WithRedirectURL sets where recovery e-mails send the user back to.
func WithRedirectURL(u string) SessionOption {
	return func(m *SessionManager) { m.redirectTo = u }
}

func WithReloadDelay(d time.Duration) SessionOption {
	return func(m *SessionManager) { m.reloadDelay = d }
}

// WithReload sets the hook that restarts the session layer after a
// rejected link.
func WithReload(fn func()) SessionOption {
	return func(m *SessionManager) { m.reload = fn }
}

// WithAfterFunc replaces time.AfterFunc.
func WithAfterFunc(fn func(time.Duration, func()) Stopper) SessionOption {
	return func(m *SessionManager) { m.afterFunc = fn }
}

// WithOnChange registers a callback run on the event loop after every
// provider event. It must not call back into the manager's actions.
func WithOnChange(fn func()) SessionOption {
	return func(m *SessionManager) { m.onChange = fn }
}

func WithSessionLogger(l logging.Logger) SessionOption {
	return func(m *SessionManager) { m.log = l }
}

func NewSessionManager(auth AuthProvider, notify Notifier, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		auth:        auth,
		notify:      notify,
		log:         logging.Nop(),
		reloadDelay: DefaultReloadDelay,
		afterFunc: func(d time.Duration, f func()) Stopper {
			return time.AfterFunc(d, f)
		},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start inspects link, acquires the provider event stream and loads the
// current session. A link carrying an error schedules the reload hook and
// does nothing else. The recovery flag is set before any session lookup.
func (m *SessionManager) Start(ctx context.Context, link models.Link) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	if link.HasError() {
		m.log.Warn(ctx, "rejected link", "error_code", link.ErrorCode, "error", link.Error)
		if link.IsExpired() {
			m.notify.Error(MsgLinkExpired)
		} else {
			m.notify.Error(MsgLinkInvalid)
		}
		if m.reload != nil {
			m.mu.Lock()
			m.timer = m.afterFunc(m.reloadDelay, m.reload)
			m.mu.Unlock()
		}
		return nil
	}

	if link.IsRecovery() {
		m.mu.Lock()
		m.recovering = true
		m.mu.Unlock()
	}

	sub := m.auth.Subscribe()
	m.mu.Lock()
	m.sub = sub
	m.loopDone = make(chan struct{})
	m.syncReq = make(chan chan struct{})
	m.mu.Unlock()
	go m.loop(sub, m.loopDone, m.syncReq)

	s, err := m.auth.GetSession(ctx)
	if err != nil {
		m.log.Warn(ctx, "session lookup failed", "error", err)
	} else {
		m.setSession(s)
	}

	if link.HasTokens() {
		if s, err := m.auth.SetSessionFromLink(ctx, link); err != nil {
			m.log.Warn(ctx, "link session rejected", "error", err)
			m.notify.Error(MsgLinkInvalid)
		} else {
			m.setSession(s)
		}
	}
	m.settle()
	return nil
}

// loop is the only consumer of the event stream. A settle request is
// acknowledged once every event already delivered has been handled.
func (m *SessionManager) loop(sub *client.Subscription, done chan struct{}, syncReq chan chan struct{}) {
	defer close(done)
	for {
		select {
		case <-sub.Done():
			return
		case ev := <-sub.Events():
			if closed(sub) {
				return
			}
			m.handle(ev)
		case ack := <-syncReq:
			for drained := false; !drained; {
				select {
				case ev := <-sub.Events():
					if closed(sub) {
						close(ack)
						return
					}
					m.handle(ev)
				default:
					drained = true
				}
			}
			close(ack)
		}
	}
}

func closed(sub *client.Subscription) bool {
	select {
	case <-sub.Done():
		return true
	default:
		return false
	}
}

// settle waits until the events published by a completed provider call
// have been applied.
func (m *SessionManager) settle() {
	m.mu.RLock()
	syncReq, done := m.syncReq, m.loopDone
	m.mu.RUnlock()
	if syncReq == nil {
		return
	}

	ack := make(chan struct{})
	select {
	case syncReq <- ack:
	case <-done:
		return
	}
	select {
	case <-ack:
	case <-done:
	}
}

func (m *SessionManager) handle(ev models.AuthEvent) {
	m.mu.Lock()
	m.session = ev.Session.Clone()
	if ev.Kind == models.EventPasswordRecovery {
		m.recovering = true
	}
	m.mu.Unlock()

	m.log.Debug(context.Background(), "auth event", "event", ev.Kind, "signed_in", ev.Session != nil)
	if m.onChange != nil {
		m.onChange()
	}
}

func (m *SessionManager) setSession(s *models.Session) {
	m.mu.Lock()
	m.session = s.Clone()
	m.mu.Unlock()
}

// Close releases the event stream exactly once and stops a pending reload.
// No event is handled after Close returns.
func (m *SessionManager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		timer, sub, done := m.timer, m.sub, m.loopDone
		m.mu.Unlock()

		if timer != nil {
			timer.Stop()
		}
		if sub != nil {
			sub.Close()
			<-done
		}
	})
}

// SignIn authenticates with the provider. The stored session follows from
// the provider's events, which are applied before SignIn returns.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) error {
	if _, err := m.auth.SignInWithPassword(ctx, strings.TrimSpace(email), password); err != nil {
		m.log.Info(ctx, "sign in failed", "error", err)
		m.notify.Error(translate.ErrorWithFallback(err, MsgSignInFailed))
		return err
	}
	m.settle()
	m.notify.Success(MsgSignedIn)
	return nil
}

// SignOut invalidates the session at the provider. The local session is
// kept when the provider could not be reached.
func (m *SessionManager) SignOut(ctx context.Context) error {
	if err := m.auth.SignOut(ctx); err != nil {
		m.log.Warn(ctx, "sign out failed", "error", err)
		m.notify.Error(translate.Error(err))
		return err
	}
	m.settle()
	return nil
}

func (m *SessionManager) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		m.notify.Error(MsgEmailRequired)
		return common.ErrEmailRequired
	}

	if err := m.auth.ResetPasswordForEmail(ctx, email, m.redirectTo); err != nil {
		m.log.Info(ctx, "recovery e-mail failed", "error", err)
		m.notify.Error(MsgRecoveryEmailFailed + translate.Error(err))
		return err
	}
	m.notify.Success(MsgRecoveryEmailSent)
	return nil
}

// ConfirmPasswords checks the caller-side password confirmation.
func (m *SessionManager) ConfirmPasswords(password, confirmation string) error {
	if password != confirmation {
		m.notify.Error(MsgPasswordMismatch)
		return common.ErrPasswordMismatch
	}
	if len([]rune(password)) < MinPasswordLength {
		m.notify.Error(MsgPasswordTooShort)
		return common.ErrPasswordTooShort
	}
	return nil
}

// UpdatePassword sets a new password for the signed-in user and runs
// onUpdated after success.
func (m *SessionManager) UpdatePassword(ctx context.Context, password string, onUpdated func()) error {
	if err := m.auth.UpdateUserPassword(ctx, password); err != nil {
		m.log.Info(ctx, "password update failed", "error", err)
		msg := MsgPasswordUpdateFailed
		if !errors.Is(err, client.ErrNoSession) {
			msg = translate.ErrorWithFallback(err, MsgPasswordUpdateFailed)
		}
		m.notify.Error(msg)
		return err
	}
	m.settle()
	m.notify.Success(MsgPasswordUpdated)
	if onUpdated != nil {
		onUpdated()
	}
	return nil
}

// EndRecovery clears the recovery flag.
func (m *SessionManager) EndRecovery() {
	m.mu.Lock()
	m.recovering = false
	m.mu.Unlock()
}

func (m *SessionManager) Session() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Clone()
}

// AccessToken returns a bearer credential for the current session, letting
// the provider refresh it first when it has expired. It is empty when
// signed out.
func (m *SessionManager) AccessToken(ctx context.Context) string {
	s, err := m.auth.GetSession(ctx)
	if err != nil {
		m.log.Warn(ctx, "session refresh failed", "error", err)
		s = m.Session()
	}
	if s == nil {
		return ""
	}
	return s.AccessToken
}

func (m *SessionManager) IsRecovering() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.recovering
}

func (m *SessionManager) State() SessionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch {
	case m.session == nil:
		return StateUnauthenticated
	case m.recovering:
		return StateRecoveringPassword
	default:
		return StateAuthenticated
	}
}

func (m *SessionManager) View() View {
	switch m.State() {
	case StateAuthenticated:
		return ViewDashboard
	case StateRecoveringPassword:
		return ViewSetPassword
	default:
		return ViewLogin
	}
}
