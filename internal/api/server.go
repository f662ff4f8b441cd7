package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/baxromumarov/jobfeeds/internal/core"
	"github.com/baxromumarov/jobfeeds/internal/observability"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
	"github.com/baxromumarov/jobfeeds/internal/store"
)

// RunStore is the persistence the HTTP surface needs. *store.Store implements it.
type RunStore interface {
	SaveRun(ctx context.Context, snap *core.Snapshot) error
	ListRuns(ctx context.Context, limit, offset int) ([]store.Run, error)
	GetRun(ctx context.Context, id uuid.UUID) (*store.Run, error)
	GetRunPostings(ctx context.Context, id uuid.UUID, limit, offset int) ([]scraper.Posting, error)
}

type Server struct {
	router    *chi.Mux
	executor  core.Executor
	runs      RunStore
	stats     *observability.Stats
	sources   []scraper.Source
	minSalary int
}

type Option func(*Server)

// WithDefaultMinSalary is used when a run request omits min_salary.
func WithDefaultMinSalary(v int) Option {
	return func(s *Server) { s.minSalary = v }
}

// WithSources sets the sources listed by GET /sources.
func WithSources(sources []scraper.Source) Option {
	return func(s *Server) { s.sources = sources }
}

func NewServer(executor core.Executor, runs RunStore, stats *observability.Stats, opts ...Option) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		executor: executor,
		runs:     runs,
		stats:    stats,
		sources:  scraper.Registry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)
	s.router.Get("/sources", s.handleListSources)
	s.router.Route("/runs", func(r chi.Router) {
		r.Get("/", s.handleListRuns)
		r.Post("/", s.handleCreateRun)
		r.Get("/{id}", s.handleGetRun)
		r.Get("/{id}/postings", s.handleGetRunPostings)
	})
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.stats.Snapshot())
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
