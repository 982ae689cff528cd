package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/terra-clan/vocab-trainer/internal/config"
	"github.com/terra-clan/vocab-trainer/internal/services"
	"github.com/terra-clan/vocab-trainer/internal/trainer"
)

// Server represents the HTTP API server
type Server struct {
	config   config.ServerConfig
	router   *chi.Mux
	manager  trainer.Manager
	registry *services.Registry
	validate *validator.Validate
}

// NewServer creates a new API server. registry may be nil.
func NewServer(cfg config.ServerConfig, manager trainer.Manager, registry *services.Registry) *Server {
	if registry == nil {
		registry = services.NewRegistry()
	}

	s := &Server{
		config:   cfg,
		manager:  manager,
		registry: registry,
		validate: newValidator(),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", UserIDHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleRoot)

		// Word catalog
		r.Route("/words", func(r chi.Router) {
			r.Get("/", s.handleListWords)
			r.Post("/", s.handleCreateWord)
			r.Get("/categories", s.handleListCategories)
			r.Get("/random", s.handleRandomWords)
			r.Get("/{id}", s.handleGetWord)
		})

		r.Get("/quiz/multiple-choice", s.handleMultipleChoiceQuiz)

		// Per-user routes
		r.Group(func(r chi.Router) {
			r.Use(RequireUser)

			r.Route("/progress", func(r chi.Router) {
				r.Get("/", s.handleListProgress)
				r.Post("/update", s.handleUpdateProgress)
				r.Get("/stats", s.handleStats)
			})

			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", s.handleListSessions)
				r.Post("/", s.handleCreateSession)
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
