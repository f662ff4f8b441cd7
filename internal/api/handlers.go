package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/baxromumarov/jobfeeds/internal/observability"
	"github.com/baxromumarov/jobfeeds/internal/query"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
	"github.com/baxromumarov/jobfeeds/internal/store"
)

type CreateRunRequest struct {
	Keyword      string `json:"keyword"`
	MinSalary    *int   `json:"min_salary"`
	ContractOnly bool   `json:"contract_only"`
}

type sourceInfo struct {
	Name       string `json:"name"`
	BaseURL    string `json:"base_url"`
	PerPage    int    `json:"per_page"`
	Pagination string `json:"pagination"`
	Rounding   string `json:"rounding"`
}

// handleCreateRun runs one aggregation synchronously and stores the result.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Keyword) == "" {
		respondError(w, http.StatusBadRequest, "keyword is required")
		return
	}
	minSalary := s.minSalary
	if req.MinSalary != nil {
		minSalary = *req.MinSalary
	}

	snap, err := s.executor.Run(r.Context(), query.New(req.Keyword, minSalary, req.ContractOnly))
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "Run aborted: "+err.Error())
		return
	}
	if err := s.runs.SaveRun(r.Context(), snap); err != nil {
		s.stats.IncError(observability.ErrorStore, "api")
		respondError(w, http.StatusInternalServerError, "Failed to save run: "+err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)

	runs, err := s.runs.ListRuns(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch runs: "+err.Error())
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  runs,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := parseRunID(w, r)
	if !ok {
		return
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch run: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, run)
}

func (s *Server) handleGetRunPostings(w http.ResponseWriter, r *http.Request) {
	id, ok := parseRunID(w, r)
	if !ok {
		return
	}
	limit, offset := parsePagination(r, 50)

	postings, err := s.runs.GetRunPostings(r.Context(), id, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch postings: "+err.Error())
		return
	}
	if postings == nil {
		postings = []scraper.Posting{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  postings,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	items := make([]sourceInfo, 0, len(s.sources))
	for _, src := range s.sources {
		items = append(items, sourceInfo{
			Name:       src.Name,
			BaseURL:    src.BaseURL,
			PerPage:    src.PerPage,
			Pagination: src.Pagination.String(),
			Rounding:   src.Rounding.String(),
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func parseRunID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid run ID")
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
