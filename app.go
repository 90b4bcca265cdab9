package fresco

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/frescoui/fresco/pkg/middleware"
	"github.com/frescoui/fresco/pkg/page"
	"github.com/frescoui/fresco/pkg/session"
)

// ClientScriptPath is where the embedded browser runtime is served.
const ClientScriptPath = "/_fresco/client.js"

// App is the application entry point. It owns the session store, the page
// registry, and the HTTP surface, and implements http.Handler.
//
//	app := fresco.New(fresco.Config{Addr: ":8080"})
//	app.RegisterPage(page.Definition{Path: "/", New: NewHome})
//	log.Fatal(app.Run(context.Background()))
type App struct {
	config   Config
	logger   *slog.Logger
	mux      *chi.Mux
	sessions *session.Store
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	pages map[string]*page.Definition
}

// New creates an application with the given configuration. Zero-valued
// fields take the defaults from DefaultConfig.
func New(cfg Config) *App {
	cfg.applyDefaults()

	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		if cfg.DevMode {
			checkOrigin = func(*http.Request) bool { return true }
		} else {
			checkOrigin = sameOrigin
		}
	}

	a := &App{
		config:   cfg,
		logger:   cfg.Logger.With("component", "app"),
		mux:      chi.NewRouter(),
		sessions: session.NewStore(cfg.Logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferBytes,
			WriteBufferSize: cfg.WriteBufferBytes,
			CheckOrigin:     checkOrigin,
		},
		pages: make(map[string]*page.Definition),
	}

	for _, mw := range cfg.Middleware {
		a.mux.Use(mw)
	}
	a.mux.Get(ClientScriptPath, a.serveClientScript)
	a.mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeNotFound(w, &NotFoundError{Kind: "page", Name: r.URL.Path})
	})
	return a
}

// RegisterPage adds a page to the registry and mounts its routes: GET path,
// POST path/api/{endpoint}, GET path/socket. Registering a path again
// swaps the definition in place; sessions holding an instance of the old
// definition keep it for the replace grace period and then rebuild.
func (a *App) RegisterPage(def page.Definition) {
	if def.New == nil {
		panic("fresco: page definition requires a constructor")
	}
	def.Path = normalizePath(def.Path)

	a.mu.Lock()
	_, replacing := a.pages[def.Path]
	a.pages[def.Path] = &def
	a.mu.Unlock()

	if replacing {
		grace := a.config.ReplaceGrace
		a.sessions.Each(func(s *session.Session) {
			s.Replace(def.Path, grace)
		})
		a.logger.Info("page replaced", "path", def.Path)
		return
	}

	a.mux.Get(def.Path, a.handlePage(def.Path))
	a.mux.Post(routePath(def.Path, "api/{endpoint}"), a.handleEndpoint(def.Path))
	a.mux.Get(routePath(def.Path, "socket"), a.handleSocket(def.Path))
	a.logger.Info("page registered", "path", def.Path)
}

func (a *App) definition(path string) *page.Definition {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pages[path]
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Sessions exposes the session store, mainly for administrative tooling.
func (a *App) Sessions() *session.Store {
	return a.sessions
}

// ResetSession destroys a session by token: its pages and storage are
// dropped and the token stops resolving.
func (a *App) ResetSession(token string) bool {
	if !a.sessions.Reset(token) {
		return false
	}
	middleware.RecordSessionDestroy()
	return true
}

// Run serves the application at Config.Addr until the context is cancelled,
// then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{Addr: a.config.Addr, Handler: a}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	a.logger.Info("listening", "addr", a.config.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// normalizePath gives every page path a leading slash and no trailing
// slash, "/" excepted.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if p != "/" {
		p = strings.TrimRight(p, "/")
	}
	return p
}

// routePath joins a page path with a route suffix.
func routePath(p, suffix string) string {
	if p == "/" {
		return "/" + suffix
	}
	return p + "/" + suffix
}

// sameOrigin is the default websocket origin check: no Origin header, or an
// Origin whose host matches the request host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

func writeNotFound(w http.ResponseWriter, err *NotFoundError) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintln(w, err.Error())
}
