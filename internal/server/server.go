// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It connects handlers, middleware and
// routes, and decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes (admin auth, rate limits)
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// cmd/server/main.go builds the database, storage, mailer and services, and
// passes them in as Deps. New only builds handlers and routes, so tests can
// create a full router around fakes or a temporary SQLite file.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hoangchien/portfolio/internal/auth"
	"github.com/hoangchien/portfolio/internal/config"
	"github.com/hoangchien/portfolio/internal/handler"
	"github.com/hoangchien/portfolio/internal/middleware"
	"github.com/hoangchien/portfolio/internal/service"
	"github.com/hoangchien/portfolio/internal/storage"
)

// Deps are the services and settings the routes need.
type Deps struct {
	Auth     *service.AuthService
	About    *service.AboutService
	Projects *service.ProjectService
	Albums   *service.AlbumService
	Posts    *service.PostService
	Contact  *service.ContactService

	// Limits applies to every uploaded file.
	Limits storage.Limits
	// UploadDir is served at /uploads/ when the local backend is in use.
	// Empty for object storage.
	UploadDir string
	// Ping reports whether the database is reachable. Used by /healthz.
	Ping func(ctx context.Context) error
}

// Server represents the HTTP server and its router.
type Server struct {
	router *chi.Mux
	config *config.Config
	deps   Deps
	logger *slog.Logger
}

// New builds the router. It fails only when the configured web dir has no
// index.html.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		deps:   deps,
		logger: logger,
	}
	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// POST   /api/login                      → login (rate limited)
// POST   /api/logout                     → revoke token              [admin]
// GET    /api/session                    → current user
// GET    /api/about                      → latest profile
// PUT    /api/about                      → update profile            [admin]
// GET    /api/projects[?enrich=true]     → list projects
// POST   /api/projects                   → create project            [admin]
// DELETE /api/projects/{id}              → delete project            [admin]
// GET    /api/photo-albums               → list albums
// GET    /api/photo-albums/{slug}        → album by slug
// GET    /api/photo-albums/{id}/photos   → photos of one album
// POST   /api/upload-photos              → create album              [admin]
// DELETE /api/photo-albums/{id}          → delete album              [admin]
// GET    /api/blogger                    → list posts
// GET    /api/blogger/{slug}             → post by slug
// POST   /api/blogger                    → create post               [admin]
// DELETE /api/blogger/{id}               → delete post               [admin]
// POST   /api/contact                    → contact form (rate limited)
// GET    /uploads/*                      → stored images (local backend)
// GET    /healthz, /metrics              → liveness, Prometheus
// GET    /*                              → single-page client
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns a unique ID to each request (for tracing)
// 2. RealIP: extracts real client IP from proxy headers (rate limits key on it)
// 3. Logger and Metrics: observe the final status of every request
// 4. Recoverer: catches panics and returns 500 instead of crashing
// 5. CORS: must be global so OPTIONS preflights are answered
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	if s.deps.UploadDir != "" {
		files := http.FileServer(http.Dir(s.deps.UploadDir))
		s.router.Handle(storage.LocalURLPrefix+"*", http.StripPrefix(storage.LocalURLPrefix, noDirListing(files)))
	}

	authHandler := handler.NewAuthHandler(s.deps.Auth, s.config.Auth.CookieSecure, s.logger)
	aboutHandler := handler.NewAboutHandler(s.deps.About, s.deps.Limits, s.logger)
	projectHandler := handler.NewProjectHandler(s.deps.Projects, s.logger)
	albumHandler := handler.NewAlbumHandler(s.deps.Albums, s.deps.Limits, s.logger)
	postHandler := handler.NewPostHandler(s.deps.Posts, s.deps.Limits, s.logger)
	contactHandler := handler.NewContactHandler(s.deps.Contact, s.logger)

	rl := s.config.RateLimit
	loginLimit := httprate.Limit(rl.LoginRequests, rl.LoginWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(tooManyRequests),
	)
	contactLimit := httprate.Limit(rl.ContactRequests, rl.ContactWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(tooManyRequests),
	)

	s.router.Route("/api", func(r chi.Router) {
		// Public reads. OptionalAuth only lets error responses show admins
		// the underlying cause of a 500.
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(s.deps.Auth))

			r.With(loginLimit).Post("/login", authHandler.HandleLogin)
			r.Get("/session", authHandler.HandleSession)
			r.With(contactLimit).Post("/contact", contactHandler.HandleSend)

			r.Get("/about", aboutHandler.HandleGet)
			r.Get("/projects", projectHandler.HandleList)
			r.Get("/photo-albums", albumHandler.HandleList)
			r.Get("/photo-albums/{ref}", albumHandler.HandleGet)
			r.Get("/photo-albums/{ref}/photos", albumHandler.HandlePhotos)
			r.Get("/blogger", postHandler.HandleList)
			r.Get("/blogger/{ref}", postHandler.HandleGet)
		})

		// Admin writes.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(s.deps.Auth))

			r.Post("/logout", authHandler.HandleLogout)
			r.Put("/about", aboutHandler.HandleUpdate)
			r.Post("/projects", projectHandler.HandleCreate)
			r.Delete("/projects/{ref}", projectHandler.HandleDelete)
			r.Post("/upload-photos", albumHandler.HandleUpload)
			r.Delete("/photo-albums/{ref}", albumHandler.HandleDelete)
			r.Post("/blogger", postHandler.HandleCreate)
			r.Delete("/blogger/{ref}", postHandler.HandleDelete)
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeStatus(w, http.StatusNotFound, "not_found", "no such API route")
		})
	})

	if dir := s.config.Server.WebDir; dir != "" {
		spa, err := handler.NewSPAHandler(dir, s.logger)
		if err != nil {
			return err
		}
		s.router.Handle("/*", spa)
	}

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.deps.Ping(ctx); err != nil {
			s.logger.Warn("health check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable", "database unreachable")
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (ShutdownTimeout, 30s by default)
//
// The caller owns the database and closes it after Start returns.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", cfg.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", cfg.Port)),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}

// noDirListing turns directory requests into 404s.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later")
}

func writeStatus(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":%q,"message":%q}`, kind, message)
}
