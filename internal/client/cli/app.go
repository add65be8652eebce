package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/dmitrijs2005/catalogctl/internal/client/client"
	"github.com/dmitrijs2005/catalogctl/internal/client/config"
	"github.com/dmitrijs2005/catalogctl/internal/client/models"
	"github.com/dmitrijs2005/catalogctl/internal/client/repositories/sessions"
	"github.com/dmitrijs2005/catalogctl/internal/client/services"
	"github.com/dmitrijs2005/catalogctl/internal/filex"
	"github.com/dmitrijs2005/catalogctl/internal/logging"
)

// DatabaseFile is the name of the local SQLite file inside the data directory.
const DatabaseFile = "catalog.db"

// productAPI is the product surface the console needs from the REST client.
type productAPI interface {
	services.ProductLister
	services.ProductWriter
}

type App struct {
	config    *config.Config
	log       logging.Logger
	db        *sql.DB
	auth      services.AuthProvider
	notify    services.Notifier
	products  *services.ProductSynchronizer
	mutations *services.MutationCoordinator
	reader    *bufio.Reader
	out       io.Writer

	mu      sync.Mutex
	session *services.SessionManager
	mounted bool
}

// NewApp opens the local database, chooses the session store and wires the
// API clients and services.
//
// Sessions are persisted (encrypted) only when a session passphrase is
// configured; otherwise they live in memory for the lifetime of the process.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, c.LogFormat, os.Stderr)

	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, DatabaseFile))
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	var store client.SessionStore
	if c.SessionKey != "" {
		store = sessions.NewSQLiteStore(db, c.SessionKey)
	} else {
		log.Info(ctx, "session passphrase not set, sessions are kept in memory")
		store = sessions.NewMemoryStore()
	}

	auth := client.NewAuthClient(c.AuthURL, c.AuthAPIKey, store,
		client.WithAuthLogger(log.With("component", "auth")),
		client.WithAuthHTTPClient(&http.Client{Timeout: c.RequestTimeout}),
	)
	api := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout,
		client.WithLogger(log.With("component", "api")),
	)

	a := newApp(c, auth, api, newConsoleNotifier(os.Stdout), log, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, auth services.AuthProvider, api productAPI, notify services.Notifier,
	log logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{
		config: c,
		log:    log,
		auth:   auth,
		notify: notify,
		reader: bufio.NewReader(in),
		out:    out,
	}
	a.products = services.NewProductSynchronizer(api, notify, log.With("component", "products"))
	a.mutations = services.NewMutationCoordinator(api, a, a.products, notify, log.With("component", "mutations"))
	return a
}

// Run starts the session layer with the link given at startup and blocks in
// the REPL until the user exits.
func (a *App) Run(ctx context.Context, link models.Link) {
	defer a.Close()

	printlnFn("Catálogo de produtos (digite 'help' para ver os comandos)")
	if err := a.startSession(ctx, link); err != nil {
		a.log.Error(ctx, "session start failed", "error", err)
		return
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the session subscription and the local database.
func (a *App) Close() {
	if m := a.sessionManager(); m != nil {
		m.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "close database", "error", err)
		}
	}
}

// startSession replaces the session manager with a fresh one and starts it.
func (a *App) startSession(ctx context.Context, link models.Link) error {
	m := services.NewSessionManager(a.auth, a.notify,
		services.WithRedirectURL(a.config.RedirectURL),
		services.WithReloadDelay(a.config.LinkReloadDelay),
		services.WithReload(a.reload),
		services.WithSessionLogger(a.log.With("component", "session")),
	)

	a.mu.Lock()
	old := a.session
	a.session = m
	a.mu.Unlock()

	if old != nil {
		old.Close()
	}
	return m.Start(ctx, link)
}

// reload restarts the session layer without a link after a rejected one.
func (a *App) reload() {
	ctx := context.Background()
	a.log.Info(ctx, "reloading session without link")
	if err := a.startSession(ctx, models.Link{}); err != nil {
		a.log.Error(ctx, "session reload failed", "error", err)
	}
}

func (a *App) sessionManager() *services.SessionManager {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// AccessToken lets the mutation coordinator follow session restarts.
func (a *App) AccessToken(ctx context.Context) string {
	m := a.sessionManager()
	if m == nil {
		return ""
	}
	return m.AccessToken(ctx)
}

func (a *App) View() services.View {
	m := a.sessionManager()
	if m == nil {
		return services.ViewLogin
	}
	return m.View()
}

// Mount loads the product list the first time the dashboard is shown and
// forgets it when the dashboard is left.
func (a *App) Mount(ctx context.Context) {
	onDashboard := a.View() == services.ViewDashboard

	a.mu.Lock()
	start := onDashboard && !a.mounted
	a.mounted = onDashboard
	a.mu.Unlock()

	if start {
		_ = a.products.Start(ctx)
	}
}

func (a *App) getStatus() string {
	m := a.sessionManager()
	if m == nil {
		return ""
	}
	switch m.View() {
	case services.ViewDashboard:
		if s := m.Session(); s != nil && s.User.Email != "" {
			return fmt.Sprintf("(%s)", s.User.Email)
		}
		return "(conectado)"
	case services.ViewSetPassword:
		return "(definir senha)"
	default:
		return ""
	}
}
