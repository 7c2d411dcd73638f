// Package api is the optional control-plane HTTP front door onto the
// pool's submit/cancel/snapshot/set_algorithm methods. It is not a
// dashboard; it is the interface a dashboard would consume.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haseebdoesdev/go-task-scheduler/internal/api/handlers"
	apimiddleware "github.com/haseebdoesdev/go-task-scheduler/internal/api/middleware"
	"github.com/haseebdoesdev/go-task-scheduler/internal/api/websocket"
	"github.com/haseebdoesdev/go-task-scheduler/internal/config"
	"github.com/haseebdoesdev/go-task-scheduler/internal/events"
	"github.com/haseebdoesdev/go-task-scheduler/internal/pool"
)

// Server is the control API's HTTP surface: a chi router wrapping the
// task/admin handlers, auth, rate limiting, metrics, and the snapshot
// WebSocket stream.
type Server struct {
	router       *chi.Mux
	pool         *pool.Pool
	cfg          *config.Config
	taskHandler  *handlers.TaskHandler
	adminHandler *handlers.AdminHandler
	wsHub        *websocket.Hub
	wsHandler    *websocket.Handler
}

// NewServer builds a Server around p using cfg's server/auth/rate-limit/
// metrics sections. publisher may be nil to disable the Redis-relayed
// portion of the WebSocket stream (snapshot pushes still work).
func NewServer(cfg *config.Config, p *pool.Pool, publisher events.Publisher) *Server {
	wsHub := websocket.NewHub(p, publisher)

	s := &Server{
		router:       chi.NewRouter(),
		pool:         p,
		cfg:          cfg,
		taskHandler:  handlers.NewTaskHandler(p),
		adminHandler: handlers.NewAdminHandler(p),
		wsHub:        wsHub,
		wsHandler:    websocket.NewHandler(wsHub),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(apimiddleware.RequestLogger())
	s.router.Use(apimiddleware.Metrics())
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Heartbeat("/health"))
}

func (s *Server) setupRoutes() {
	authCfg := &apimiddleware.AuthConfig{
		Enabled:   s.cfg.Auth.Enabled,
		JWTSecret: s.cfg.Auth.JWTSecret,
		APIKeys:   toSet(s.cfg.Auth.APIKeys),
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType("application/json"))
		r.Use(apimiddleware.Auth(authCfg))

		if s.cfg.RateLimit.Enabled {
			r.Use(apimiddleware.ClientRateLimit(s.cfg.RateLimit.RequestsPerSecond, s.cfg.RateLimit.Burst))
		}

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", s.taskHandler.Create)
			r.Get("/", s.taskHandler.List)
			r.Get("/{taskID}", s.taskHandler.Get)
			r.Delete("/{taskID}", s.taskHandler.Cancel)
		})
	})

	s.router.Route("/admin", func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType("application/json"))
		r.Use(apimiddleware.Auth(authCfg))

		r.Get("/health", s.adminHandler.HealthCheck)
		r.Get("/snapshot", s.adminHandler.Snapshot)
		r.Get("/workers", s.adminHandler.Workers)
		r.Get("/algorithm", s.adminHandler.GetAlgorithm)
		r.Post("/algorithm", s.adminHandler.SetAlgorithm)
	})

	s.router.Get("/ws", s.wsHandler.ServeWS)

	if s.cfg.Metrics.Enabled {
		s.router.Handle(s.cfg.Metrics.Path, promhttp.Handler())
	}
}

// Start starts the WebSocket hub's background goroutines.
func (s *Server) Start(ctx context.Context) {
	s.wsHub.Run(ctx)
}

// Stop stops the WebSocket hub.
func (s *Server) Stop() {
	s.wsHub.Stop()
}

// Router returns the underlying chi router.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
