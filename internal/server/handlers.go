package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// maxRequestBody caps the accepted request payload (16 MiB covers any
// realistic academic document).
const maxRequestBody = 16 << 20

// ScoreResponse is the payload of POST /score: the full report plus the
// derived compliance summary.
type ScoreResponse struct {
	types.Report
	PolicyCompliance types.PolicyComplianceSummary `json:"policy_compliance"`
}

// ReviewResponse is the payload of POST /review: the report, the compliance
// summary and the synthesized critical review.
type ReviewResponse struct {
	types.Report
	PolicyCompliance types.PolicyComplianceSummary `json:"policy_compliance"`
	CriticalReview   types.CriticalReviewSummary   `json:"critical_review"`
}

// RulesResponse is the payload of GET /rules.
type RulesResponse struct {
	ProfileID   string                  `json:"profile_id"`
	Agents      map[string][]rules.Rule `json:"agents"`
	Diagnostics rules.Diagnostics       `json:"diagnostics"`
}

// handleHealth returns server health status together with the rule load
// diagnostics, so a partially loaded library is visible from the outside.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"rule_agents": s.lib.AgentIDs(),
		"diagnostics": s.lib.Diagnostics(),
	})
}

// handleLint runs the full analysis pipeline and returns the report.
func (s *Server) handleLint(w http.ResponseWriter, r *http.Request) {
	_, report, ok := s.runLint(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleScore runs the pipeline and adds the policy compliance summary.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	req, report, ok := s.runLint(w, r)
	if !ok {
		return
	}
	compliance := s.scorer.Score(req.Context, report.Profile, report.Findings)
	s.jsonResponse(w, http.StatusOK, ScoreResponse{
		Report:           report,
		PolicyCompliance: compliance,
	})
}

// handleReview runs the pipeline, scores it, and synthesizes the critical
// review summary.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	req, report, ok := s.runLint(w, r)
	if !ok {
		return
	}
	compliance := s.scorer.Score(req.Context, report.Profile, report.Findings)
	summary := s.synthesizer.Synthesize(report.Profile, report.Findings, &compliance)
	s.jsonResponse(w, http.StatusOK, ReviewResponse{
		Report:           report,
		PolicyCompliance: compliance,
		CriticalReview:   summary,
	})
}

// handleListRules returns the loaded rules grouped by agent. An optional
// profile_variant query parameter filters by rule source.
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	variant := r.URL.Query().Get("profile_variant")

	agents := make(map[string][]rules.Rule)
	for _, agentID := range s.lib.AgentIDs() {
		agents[agentID] = s.lib.RulesFor(agentID, variant)
	}

	s.jsonResponse(w, http.StatusOK, RulesResponse{
		ProfileID:   s.lib.ProfileID(),
		Agents:      agents,
		Diagnostics: s.lib.Diagnostics(),
	})
}

// handleReloadRules re-reads the rule files and swaps the active snapshot.
func (s *Server) handleReloadRules(w http.ResponseWriter, _ *http.Request) {
	if err := s.lib.Reload(); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, fmt.Sprintf("reload failed: %v", err))
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":      "reloaded",
		"rule_agents": s.lib.AgentIDs(),
		"diagnostics": s.lib.Diagnostics(),
	})
}

// runLint decodes the request and executes the pipeline, returning both. On
// failure it has already written the error response.
func (s *Server) runLint(w http.ResponseWriter, r *http.Request) (types.LintRequest, types.Report, bool) {
	var req types.LintRequest

	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			s.errorResponse(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			s.errorResponse(w, http.StatusBadRequest, "request body is empty")
		default:
			s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		}
		return req, types.Report{}, false
	}

	report, err := s.orch.Run(r.Context(), req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return req, types.Report{}, false
	}
	return req, report, true
}
