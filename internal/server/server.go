package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	v1 "github.com/gosuda/campusbot/internal/api/v1"
	"github.com/gosuda/campusbot/internal/api/ws"
	"github.com/gosuda/campusbot/internal/config"
	"github.com/gosuda/campusbot/internal/knowledge"
	cbslack "github.com/gosuda/campusbot/internal/messenger/slack"
	"github.com/gosuda/campusbot/internal/server/middleware"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	Store    v1.DataStore
	Auth     v1.AuthService
	Resolver v1.Resolver
	Notifier v1.Notifier // optional
	Ingester v1.DocumentIngester
	Dataset  *knowledge.Dataset

	// PubSub backs the admin miss feed. Nil disables /ws.
	PubSub ws.Subscriber
	// Slack is nil when the Slack app is not configured.
	Slack  *cbslack.Handler
	// Checks are probed by /readyz, keyed by name.
	Checks map[string]Pinger
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	slack      *cbslack.Handler
}

// New creates a Server with all routes wired. ctx bounds the rate limiters'
// background sweepers. webAssets may be nil; when provided, the static chat
// page is served on unmatched routes.
func New(ctx context.Context, cfg *config.Config, deps Deps, webAssets fs.FS) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(middleware.Metrics())
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s := &Server{
		router: router,
		slack:  deps.Slack,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// /api/v1 is split by caller: anonymous (chat, auth), tenant admin and
	// superadmin. Only the public group serves the OpenAPI document.
	router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(ctx, cfg.Server.ChatRPS, cfg.Server.ChatBurst))

			api := humachi.New(r, apiConfig("CampusBot API", true))
			registerPublicRoutes(api, deps)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret))
			r.Use(middleware.RequireAdmin())
			r.Use(middleware.RequireTenant())
			r.Use(middleware.RateLimit(ctx, 50, 100))

			api := humachi.New(r, apiConfig("CampusBot Admin API", false))
			registerAdminRoutes(api, deps)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret))
			r.Use(middleware.RequireSuperAdmin())

			api := humachi.New(r, apiConfig("CampusBot Operator API", false))
			registerSuperAdminRoutes(api, deps)
		})
	})

	if deps.PubSub != nil {
		router.Route("/ws", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT.Secret))
			r.Use(middleware.RequireAdmin())
			r.Use(middleware.RequireTenant())
			registerWSRoutes(r, ws.NewHub(deps.PubSub))
		})
	}

	// Slack webhook routes: real handler if configured, 501 placeholder otherwise.
	router.Route("/slack", func(r chi.Router) {
		if deps.Slack != nil {
			registerSlackRoutes(r, deps.Slack)
			log.Info().Str("tenant_id", cfg.Slack.TenantID).Msg("slack integration enabled")
			return
		}
		notImplemented := func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotImplemented)
		}
		r.Post("/events", notImplemented)
		r.Post("/commands", notImplemented)
	})

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	router.Get("/readyz", readinessHandler(deps.Checks))
	router.Handle("/metrics", promhttp.Handler())

	// Must be registered last so API/WS/Slack routes take priority.
	if webAssets != nil {
		router.NotFound(staticFileServer(webAssets).ServeHTTP)
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and waits for in-flight Slack
// replies.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	if s.slack != nil {
		s.slack.Wait()
	}
	return nil
}

func apiConfig(title string, docs bool) huma.Config {
	cfg := huma.DefaultConfig(title, "1.0.0")
	cfg.Servers = []*huma.Server{{URL: "/api/v1"}}
	if !docs {
		cfg.OpenAPIPath = ""
		cfg.DocsPath = ""
		cfg.SchemasPath = ""
	}
	return cfg
}
