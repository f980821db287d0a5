// Package server provides the HTTP server and routing for finsight.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/finsight/internal/config"
	"github.com/aristath/finsight/internal/di"
	advisorhandlers "github.com/aristath/finsight/internal/modules/advisor/handlers"
	analysishandlers "github.com/aristath/finsight/internal/modules/analysis/handlers"
	fundamentalshandlers "github.com/aristath/finsight/internal/modules/fundamentals/handlers"
	goalshandlers "github.com/aristath/finsight/internal/modules/goals/handlers"
	markethandlers "github.com/aristath/finsight/internal/modules/market/handlers"
	portfoliohandlers "github.com/aristath/finsight/internal/modules/portfolio/handlers"
	reporthandlers "github.com/aristath/finsight/internal/modules/report/handlers"
	riskhandlers "github.com/aristath/finsight/internal/modules/risk/handlers"
	strategyhandlers "github.com/aristath/finsight/internal/modules/strategy/handlers"
	"github.com/aristath/finsight/internal/session"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
		systemHandlers: NewSystemHandlers(
			cfg.Container.DB,
			cfg.Container.BackupService,
			cfg.Container.Scheduler,
			cfg.Log,
		),
	}

	s.setupMiddleware()
	s.setupRoutes()

	// No WriteTimeout: the chat socket is long-lived
	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", session.UserHeader, session.PortfolioHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if !s.cfg.DevMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	c := s.container

	s.router.Route("/api", func(r chi.Router) {
		r.Use(session.Middleware(c.SessionLookup(), s.log))

		// Websocket upgrades must not sit behind the request timeout
		advisorHandler := advisorhandlers.NewHandler(c.AdvisorService, websocketOrigins(s.cfg.CORSOrigins), s.log)
		advisorHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
				r.Get("/backups", s.systemHandlers.HandleListBackups)
				r.Post("/backup", s.systemHandlers.HandleTriggerBackup)
				r.Delete("/data", s.systemHandlers.HandleClearData)
			})

			portfoliohandlers.NewHandler(c.PortfolioService, s.log).RegisterRoutes(r)
			riskhandlers.NewHandler(c.PortfolioService, c.Labels, s.log).RegisterRoutes(r)
			strategyhandlers.NewHandler(c.PortfolioService, c.Labels, s.log).RegisterRoutes(r)
			goalshandlers.NewHandler(c.GoalService, c.Labels, s.log).RegisterRoutes(r)
			markethandlers.NewHandler(c.MarketService, c.Labels, s.log).RegisterRoutes(r)
			fundamentalshandlers.NewHandler(c.FundamentalsService, s.log).RegisterRoutes(r)
			analysishandlers.NewHandler(c.AnalysisService, s.log).RegisterRoutes(r)
			reporthandlers.NewHandler(c.ReportService, s.log).RegisterRoutes(r)
		})
	})
}

// websocketOrigins converts CORS origins into host patterns for the socket
// handshake. "*" allows any origin.
func websocketOrigins(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			return []string{"*"}
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			patterns = append(patterns, o)
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
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
