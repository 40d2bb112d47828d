package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dgallion1/personadoc/internal/config"
	"github.com/dgallion1/personadoc/internal/parser"
	"github.com/dgallion1/personadoc/internal/pipeline"
	"github.com/dgallion1/personadoc/internal/stats"
)

// Server is the HTTP API server for personadoc.
type Server struct {
	router   chi.Router
	analyzer *pipeline.Analyzer
	cache    *parser.Cache
	stats    *stats.RunStats
	log      *slog.Logger
	cfg      config.ServerConfig
	minDocs  int
}

// NewServer creates and configures the HTTP server.
func NewServer(analyzer *pipeline.Analyzer, cache *parser.Cache, runStats *stats.RunStats, log *slog.Logger, cfg *config.Config) *Server {
	s := &Server{
		analyzer: analyzer,
		cache:    cache,
		stats:    runStats,
		log:      log,
		cfg:      cfg.Server,
		minDocs:  cfg.Analysis.MinDocuments,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Run-Id"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/upload", s.handleUpload)
		r.Get("/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
