package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/pathworks/curriculum-engine/internal/config"
	"github.com/pathworks/curriculum-engine/internal/curriculum"
	"github.com/pathworks/curriculum-engine/internal/seed"
	"github.com/pathworks/curriculum-engine/internal/storage"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	manager        curriculum.Manager
	seedLoader     *seed.Loader
	authMiddleware *AuthMiddleware
	hub            *EventHub
}

// NewServer creates a new API server. hub may be nil when the event feed is
// disabled.
func NewServer(
	cfg config.ServerConfig,
	manager curriculum.Manager,
	seedLoader *seed.Loader,
	repo storage.Repository,
	hub *EventHub,
) *Server {
	s := &Server{
		config:         cfg,
		manager:        manager,
		seedLoader:     seedLoader,
		authMiddleware: NewAuthMiddleware(repo),
		hub:            hub,
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

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	allowedOrigins := s.config.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes (protected by authentication)
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware.Authenticate)

		read := s.authMiddleware.RequirePermission("curricula:read")
		write := s.authMiddleware.RequirePermission("curricula:write")

		// Curricula
		r.Route("/curricula", func(r chi.Router) {
			r.With(read).Get("/", s.handleListCurricula)
			r.With(write).Post("/", s.handleCreateCurriculum)

			r.Route("/{id}", func(r chi.Router) {
				r.With(read).Get("/", s.handleGetCurriculum)
				r.With(write).Put("/", s.handleUpdateCurriculum)
				r.With(write).Delete("/", s.handleDeleteCurriculum)

				r.With(read).Get("/progress", s.handleGetProgress)
				r.With(read).Get("/next", s.handleNextUp)
				r.With(read).Get("/projects", s.handleListProjects)
				r.With(write).Post("/projects", s.handleCreateProject)
				r.With(read).Get("/projects/suggest", s.handleSuggestProject)

				r.With(read).Get("/levels", s.handleListLevels)
				r.With(write).Post("/levels", s.handleCreateLevel)
				r.With(read).Get("/levels/suggest", s.handleSuggestLevel)
				r.With(read).Get("/stages", s.handleListStages)
				r.With(write).Post("/stages", s.handleCreateStage)
				r.With(read).Get("/stages/suggest", s.handleSuggestStageNumber)

				r.With(write).Post("/resources", s.handleAddCurriculumResource)

				r.With(read).Get("/events", s.handleEventsWS)
			})
		})

		// Levels and stages addressed by their own IDs
		r.Route("/levels/{id}", func(r chi.Router) {
			r.With(write).Put("/", s.handleUpdateLevel)
			r.With(write).Delete("/", s.handleDeleteLevel)
		})
		r.Route("/stages/{id}", func(r chi.Router) {
			r.With(write).Put("/", s.handleUpdateStage)
			r.With(write).Delete("/", s.handleDeleteStage)
		})

		// Projects
		r.Route("/projects/{id}", func(r chi.Router) {
			r.With(read).Get("/", s.handleGetProject)
			r.With(write).Put("/", s.handleUpdateProject)
			r.With(write).Delete("/", s.handleDeleteProject)
			r.With(write).Post("/state", s.handleSetProjectState)
			r.With(read).Get("/prerequisites", s.handleGetPrerequisites)
			r.With(write).Put("/prerequisites", s.handleSetPrerequisites)
			r.With(write).Post("/resources", s.handleAddProjectResource)
			r.With(read).Get("/notes", s.handleListNotes)
			r.With(write).Post("/notes", s.handleAddNote)
		})

		r.With(write).Delete("/resources/{id}", s.handleDeleteResource)
		r.With(write).Delete("/notes/{id}", s.handleDeleteNote)

		// Seed blueprints
		r.Route("/seeds", func(r chi.Router) {
			r.With(read).Get("/", s.handleListSeeds)
			r.With(read).Get("/{slug}", s.handleGetSeed)
			r.With(write).Post("/{slug}/instantiate", s.handleInstantiateSeed)
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
