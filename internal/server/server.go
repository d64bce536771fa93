// Package server provides the HTTP API for the feasibility engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/config"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/database"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/feasibility"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/reliability"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/rules"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/scheduler"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/snapshots"
)

// Config holds everything the server needs.
type Config struct {
	Log         zerolog.Logger
	Cfg         *config.Config
	RulesDB     *database.DB
	RunsDB      *database.DB
	Feasibility *feasibility.Service
	RuleStore   *rules.Store
	Snapshots   *snapshots.Repository
	Scheduler   *scheduler.Scheduler
	Backups     *reliability.BackupService // nil when backups are disabled
}

// Server is the HTTP server.
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	feasibility    *feasibility.Service
	ruleStore      *rules.Store
	snapshots      *snapshots.Repository
	scheduler      *scheduler.Scheduler
	backups        *reliability.BackupService
	systemHandlers *SystemHandlers
}

// New creates the HTTP server with all routes configured.
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		cfg:         cfg.Cfg,
		feasibility: cfg.Feasibility,
		ruleStore:   cfg.RuleStore,
		snapshots:   cfg.Snapshots,
		scheduler:   cfg.Scheduler,
		backups:     cfg.Backups,
		systemHandlers: NewSystemHandlers(cfg.Log, cfg.Cfg.DataDir,
			[]*database.DB{cfg.RulesDB, cfg.RunsDB}, cfg.Snapshots),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Cfg.Port),
		Handler: s.router,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(120 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !s.cfg.DevMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/feasibility", func(r chi.Router) {
			r.Post("/analyze", s.handleAnalyze)
			r.Get("/stream", s.handleAnalyzeStream)
		})

		r.Route("/rules", func(r chi.Router) {
			r.Get("/{jurisdiction}/{district}", s.handleGetRule)
			r.Delete("/{jurisdiction}/{district}", s.handleInvalidateRule)
		})

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Get("/{runID}", s.handleGetRun)
		})

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleStatus)
			r.Post("/jobs/{name}/run", s.handleRunJob)
			if s.backups != nil {
				r.Get("/backups", s.handleListBackups)
			}
		})
	})
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
