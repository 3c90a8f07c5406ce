// Package server provides the HTTP server and routing for the control panel.
package server

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/trafficpanel/internal/config"
	"github.com/aristath/trafficpanel/internal/di"
	"github.com/aristath/trafficpanel/internal/metrics"
	notificationhandlers "github.com/aristath/trafficpanel/internal/modules/notifications/handlers"
	panelhandlers "github.com/aristath/trafficpanel/internal/modules/panel/handlers"
	"github.com/aristath/trafficpanel/pkg/embedded"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Port      int
	DevMode   bool
	Container *di.Container // DI container with all services
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	cfg       *config.Config
	port      int
	container *di.Container
	started   time.Time
	webFS     fs.FS
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		port:      cfg.Port,
		container: cfg.Container,
		started:   time.Now(),
	}

	webFS, err := fs.Sub(embedded.Files, "web")
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create web filesystem from embedded files")
	} else {
		s.webFS = webFS
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	// WriteTimeout stays zero: the event streams are long-lived and every
	// other route runs under the timeout middleware.
	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	c := s.container

	// Event streams run without a request timeout
	stream := NewEventsStreamHandler(c.EventBus, s.log)
	s.router.Get("/api/events/stream", stream.ServeHTTP)
	s.router.Get("/api/events/ws", NewEventsSocketHandler(c.EventBus, s.log).ServeHTTP)

	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/health", s.handleHealth)
		r.Handle("/metrics", metrics.Handler(c.Registry))

		systemHandlers := NewSystemHandlers(s.log, c.PanelDB, c.Monitor, c.Scheduler, s.started)

		r.Route("/api", func(r chi.Router) {
			r.Get("/system/status", systemHandlers.HandleSystemStatus)

			r.Route("/panel", func(r chi.Router) {
				panelhandlers.NewHandler(c.PanelService, s.log).RegisterRoutes(r)
				notificationhandlers.NewHandler(c.Notifier, s.log).RegisterRoutes(r)
			})
		})
	})

	if s.webFS == nil {
		return
	}

	assetsFS, err := fs.Sub(s.webFS, "assets")
	if err != nil {
		s.log.Warn().Err(err).Msg("Web assets directory not found in embedded files")
	} else {
		fileServer := http.FileServer(http.FS(assetsFS))
		s.router.Handle("/assets/*", http.StripPrefix("/assets/", s.assetsHandler(fileServer)))
	}

	// Serve index.html for root and all non-API routes
	s.router.Get("/", s.handleDashboard)
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api") || strings.HasPrefix(r.URL.Path, "/health") {
			http.NotFound(w, r)
			return
		}
		s.handleDashboard(w, r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// assetsHandler wraps the file server to set correct MIME types
func (s *Server) assetsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ext := filepath.Ext(r.URL.Path)

		contentType := mime.TypeByExtension(ext)
		if contentType == "" {
			switch ext {
			case ".js":
				contentType = "application/javascript"
			case ".css":
				contentType = "text/css"
			case ".svg":
				contentType = "image/svg+xml"
			default:
				contentType = "application/octet-stream"
			}
		}
		w.Header().Set("Content-Type", contentType)

		next.ServeHTTP(w, r)
	})
}

// handleDashboard serves the panel page from the embedded filesystem
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.webFS == nil {
		http.Error(w, "Frontend not available", http.StatusInternalServerError)
		return
	}

	indexFile, err := s.webFS.Open("index.html")
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to open embedded index.html")
		http.Error(w, "Frontend not available", http.StatusInternalServerError)
		return
	}
	defer indexFile.Close()

	data, err := io.ReadAll(indexFile)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read embedded index.html")
		http.Error(w, "Frontend not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to write index.html response")
	}
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
