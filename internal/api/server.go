package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/extract"
	"github.com/dgallion1/docoutline/internal/pathstore"
	"github.com/dgallion1/docoutline/internal/pipeline"
)

// OutlineCatalog reads and removes persisted outlines.
type OutlineCatalog interface {
	GetOutline(ctx context.Context, hash string) (*pathstore.OutlineRecord, error)
	DeleteOutline(ctx context.Context, hash string) (bool, error)
	ListOutlines(ctx context.Context, limit int) ([]pathstore.OutlineSummary, error)
}

// Server is the HTTP API server for docoutline.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	engine       pipeline.Segmenter
	catalog      OutlineCatalog
	claude       *extract.ClaudeClient
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. catalog and claude may
// be nil when the outline sink or the LLM is not configured.
func NewServer(orch *pipeline.Orchestrator, engine pipeline.Segmenter, catalog OutlineCatalog, claude *extract.ClaudeClient, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		engine:       engine,
		catalog:      catalog,
		claude:       claude,
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

		r.Post("/api/outline", s.handleOutline)
		r.Post("/api/outline/batch", s.handleBatchOutline)

		r.Post("/api/ingest", s.handleIngest)
		r.Post("/api/ingest/batch", s.handleBatchIngest)
		r.Get("/api/ingest/{jobID}/status", s.handleIngestStatus)

		r.Get("/api/outlines", s.handleListOutlines)
		r.Get("/api/outlines/{hash}", s.handleGetOutline)
		r.Delete("/api/outlines/{hash}", s.handleDeleteOutline)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"queue_depth": s.orchestrator.QueueDepth(),
		"llm":         s.claude != nil,
		"sink":        s.catalog != nil,
	})
}
