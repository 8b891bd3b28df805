package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmertens/pmcminer/internal/config"
	"github.com/jmertens/pmcminer/internal/nlp"
	"github.com/jmertens/pmcminer/internal/pipeline"
)

// Server is the HTTP API server for pmcminer.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	nlpClient    *nlp.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, nlpClient *nlp.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		nlpClient:    nlpClient,
		log:          log,
		cfg:          cfg,
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

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/articles", s.handleParseArticle)

		r.Post("/api/mine", s.handleMine)
		r.Get("/api/mine/{jobID}/status", s.handleMineStatus)
		r.Get("/api/mine/{jobID}/results", s.handleMineResults)

		r.Get("/api/stats/nlp", s.handleNLPStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
