package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/catalogctl/internal/client/client"
	"github.com/dmitrijs2005/catalogctl/internal/client/models"
)

type note struct {
	kind string
	msg  string
}

type recordingNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *recordingNotifier) add(kind, msg string) {
	n.mu.Lock()
	n.notes = append(n.notes, note{kind, msg})
	n.mu.Unlock()
}

func (n *recordingNotifier) Success(msg string) { n.add("success", msg) }
func (n *recordingNotifier) Error(msg string)   { n.add("error", msg) }

func (n *recordingNotifier) Loading(msg string) Pending {
	n.add("loading", msg)
	return &recordingPending{n: n}
}

func (n *recordingNotifier) all() []note {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]note(nil), n.notes...)
}

func (n *recordingNotifier) last() note {
	all := n.all()
	if len(all) == 0 {
		return note{}
	}
	return all[len(all)-1]
}

type recordingPending struct {
	n *recordingNotifier
}

func (p *recordingPending) Success(msg string) { p.n.add("resolved", msg) }
func (p *recordingPending) Error(msg string)   { p.n.add("rejected", msg) }

// fakeAuth mimics the provider: every state change is published on bus.
type fakeAuth struct {
	bus *client.Broadcaster

	mu         sync.Mutex
	session    *models.Session
	subscribes int
	resets     []string
	passwords  []string
	onGet      func()

	signInErr  error
	signOutErr error
	resetErr   error
	updateErr  error
	linkErr    error
	getErr     error
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{bus: client.NewBroadcaster()}
}

func (f *fakeAuth) Subscribe() *client.Subscription {
	f.mu.Lock()
	f.subscribes++
	f.mu.Unlock()
	return f.bus.Subscribe()
}

func (f *fakeAuth) GetSession(context.Context) (*models.Session, error) {
	if f.onGet != nil {
		f.onGet()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.session.Clone(), nil
}

func (f *fakeAuth) set(ctx context.Context, kind models.AuthEventKind, s *models.Session) {
	f.mu.Lock()
	f.session = s.Clone()
	f.mu.Unlock()
	f.bus.Publish(ctx, models.AuthEvent{Kind: kind, Session: s.Clone()})
}

func (f *fakeAuth) SignInWithPassword(ctx context.Context, email, _ string) (*models.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	s := &models.Session{AccessToken: "tok-" + email, User: models.User{Email: email}}
	f.set(ctx, models.EventSignedIn, s)
	return s.Clone(), nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.set(ctx, models.EventSignedOut, nil)
	return nil
}

func (f *fakeAuth) ResetPasswordForEmail(_ context.Context, email, redirectTo string) error {
	f.mu.Lock()
	f.resets = append(f.resets, email+" -> "+redirectTo)
	f.mu.Unlock()
	return f.resetErr
}

func (f *fakeAuth) UpdateUserPassword(ctx context.Context, password string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	f.passwords = append(f.passwords, password)
	s := f.session.Clone()
	f.mu.Unlock()
	f.bus.Publish(ctx, models.AuthEvent{Kind: models.EventUserUpdated, Session: s})
	return nil
}

func (f *fakeAuth) SetSessionFromLink(ctx context.Context, link models.Link) (*models.Session, error) {
	if f.linkErr != nil {
		return nil, f.linkErr
	}
	s := link.Session()
	f.set(ctx, models.EventSignedIn, s)
	if link.IsRecovery() {
		f.bus.Publish(ctx, models.AuthEvent{Kind: models.EventPasswordRecovery, Session: s.Clone()})
	}
	return s.Clone(), nil
}

type fakeTimer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	return true
}

func (t *fakeTimer) fire() {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()
	if !stopped {
		t.fn()
	}
}

// fakeAPI serves both the read and the write side of the product API.
type fakeAPI struct {
	mu       sync.Mutex
	lists    []models.SortSpec
	products []models.Product
	listErr  error
	// listGate, when set, receives the sort spec and returns the response for it.
	listGate func(models.SortSpec) ([]models.Product, error)

	creates []models.Product
	updates []int64
	deletes []int64
	imports []string
	tokens  []string
	body    string

	writeErr  error
	importErr error
	importRes *models.ImportResult
}

func (f *fakeAPI) List(_ context.Context, spec models.SortSpec) ([]models.Product, error) {
	f.mu.Lock()
	f.lists = append(f.lists, spec)
	gate, products, err := f.listGate, f.products, f.listErr
	f.mu.Unlock()
	if gate != nil {
		return gate(spec)
	}
	if err != nil {
		return nil, err
	}
	return append([]models.Product(nil), products...), nil
}

func (f *fakeAPI) listCalls() []models.SortSpec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.SortSpec(nil), f.lists...)
}

func (f *fakeAPI) Create(_ context.Context, token string, p models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if f.writeErr != nil {
		return f.writeErr
	}
	f.creates = append(f.creates, p)
	return nil
}

func (f *fakeAPI) Update(_ context.Context, token string, id int64, _ models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updates = append(f.updates, id)
	return nil
}

func (f *fakeAPI) Delete(_ context.Context, token string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	if f.writeErr != nil {
		return f.writeErr
	}
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeAPI) Import(_ context.Context, token, filename string, r io.Reader) (*models.ImportResult, error) {
	data, _ := io.ReadAll(r)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.imports = append(f.imports, filename)
	f.body = string(data)
	if f.importErr != nil {
		return nil, f.importErr
	}
	return f.importRes, nil
}

type staticCreds string

func (s staticCreds) AccessToken(context.Context) string { return string(s) }
