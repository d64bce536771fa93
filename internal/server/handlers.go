package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/domain"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/feasibility"
	"github.com/breverdbidder/spd-site-plan-dev-sub000/internal/snapshots"
)

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case domain.IsValidationInputError(err):
		status = http.StatusBadRequest
	case domain.IsRuleFetchError(err):
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAnalyze runs one feasibility analysis synchronously.
// POST /api/feasibility/analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req feasibility.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result, err := s.feasibility.Analyze(r.Context(), req, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.snapshots.Save(result); err != nil {
		// The analysis succeeded; persistence failure is logged, not fatal
		s.log.Error().Err(err).Str("run_id", result.RunID).Msg("Failed to persist run snapshot")
	}

	s.writeJSON(w, http.StatusOK, result)
}

// handleGetRule returns the cached or freshly fetched rule for a district.
// GET /api/rules/{jurisdiction}/{district}
func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	jurisdiction := chi.URLParam(r, "jurisdiction")
	district := chi.URLParam(r, "district")

	rule, err := s.ruleStore.GetRule(r.Context(), jurisdiction, district)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, rule)
}

// handleInvalidateRule drops the cached rule so the next lookup refetches.
// DELETE /api/rules/{jurisdiction}/{district}
func (s *Server) handleInvalidateRule(w http.ResponseWriter, r *http.Request) {
	jurisdiction := chi.URLParam(r, "jurisdiction")
	district := chi.URLParam(r, "district")

	if err := s.ruleStore.Invalidate(jurisdiction, district); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// handleListRuns lists stored runs, newest first.
// GET /api/runs?limit=50
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	summaries, err := s.snapshots.List(limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []snapshots.RunSummary{}
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

// handleGetRun loads one stored run in full.
// GET /api/runs/{runID}
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	result, err := s.snapshots.GetByID(chi.URLParam(r, "runID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if result == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleRunJob triggers a scheduled job immediately.
// POST /api/system/jobs/{name}/run
func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.scheduler.RunNow(name); err != nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "triggered", "job": name})
}

// handleListBackups lists stored backup archives.
// GET /api/system/backups
func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := s.backups.ListBackups(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, backups)
}
