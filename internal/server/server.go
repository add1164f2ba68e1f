// Package server exposes the site over HTTP: rendered pages, partial
// fragments, static assets, preference endpoints, and the click-time
// companion redirect.
package server

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/denudev/sitekit/internal/environments"
	"github.com/denudev/sitekit/internal/fragments"
	"github.com/denudev/sitekit/internal/i18n"
	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/internal/pages"
	"github.com/denudev/sitekit/internal/prefs"
	"github.com/denudev/sitekit/internal/render"
	"github.com/denudev/sitekit/internal/runtimeconfig"
	"github.com/denudev/sitekit/internal/themes"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// companionRedirectBase prefixes the click-time redirect endpoint. Rewritten
// anchors point here instead of carrying an absolute companion URL, so the
// destination reflects the override chain at click time rather than at render.
const companionRedirectBase = "/go"

// Dependencies carries the collaborators the server routes traffic through.
type Dependencies struct {
	Config     runtimeconfig.Config
	Collection *pages.Collection
	Renderer   *pages.Renderer
	Layout     *render.Layout
	Catalog    *i18n.Catalog
	Resolver   *i18n.Resolver
	Translator interfaces.Translator
	Themes     *themes.Selector
	Fragments  fragments.Source
	Links      *environments.Resolver
	PrefsRepo  prefs.PreferenceRepository
	Bus        interfaces.EventBus
	Logger     interfaces.Logger
	StaticFS   fs.FS
}

// Server serves the rendered site.
type Server struct {
	deps       Dependencies
	logger     interfaces.Logger
	router     chi.Router
	httpServer *http.Server
}

// New wires the router.
func New(deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	s := &Server{deps: deps, logger: deps.Logger}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	timeout := s.deps.Config.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	r.Use(middleware.Timeout(timeout))

	corsOpts := cors.Options{
		AllowedOrigins: []string{"https://*." + s.deps.Config.Site.CanonicalHost, "https://" + s.deps.Config.Site.CanonicalHost},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}
	if s.deps.Config.Server.CORSAllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get(companionRedirectBase+"/*", s.handleCompanionRedirect)
	r.Post("/language", s.handleSetLanguage)
	r.Post("/theme", s.handleSetTheme)
	r.Get("/partials/{name}", s.handlePartial)

	if s.deps.StaticFS != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(s.deps.StaticFS))))
	}

	r.Get("/*", s.handlePage)
	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured address.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.deps.Config.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("server.listen", "addr", s.deps.Config.Server.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
