package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo/apa7-lint/internal/config"
	"github.com/dcastillo/apa7-lint/internal/orchestrator"
	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

const structureRuleFile = `{
	"profileId": "apa7_cun",
	"agentId": "GENERALSTRUCTURE",
	"rules": [
		{
			"ruleId": "CUN-GS-001",
			"title": "Secciones obligatorias",
			"description": "El documento debe contener INTRODUCCIÓN y REFERENCIAS.",
			"source": "MIXED",
			"baseStandard": "APA7",
			"severity": "error",
			"checkType": "structural",
			"examples": {"good": "INTRODUCCIÓN ... REFERENCIAS", "bad": "solo texto"},
			"detectionHints": {
				"scope": "document",
				"sectionTargets": ["INTRODUCCIÓN", "REFERENCIAS"]
			},
			"autoFixHint": "Agrega las secciones obligatorias en orden."
		}
	]
}`

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()

	rulesDir := t.TempDir()
	profileDir := filepath.Join(rulesDir, "apa7_cun")
	require.NoError(t, os.MkdirAll(profileDir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(profileDir, "general_structure.rules.json"),
		[]byte(structureRuleFile), 0o644))

	lib, err := rules.NewLibrary(rulesDir, "apa7_cun")
	require.NoError(t, err)

	orch := orchestrator.New(lib, nil)

	cfg.Port = "0"
	srv, err := New(cfg, lib, orch)
	require.NoError(t, err)
	return srv
}

func lintBody(t *testing.T, text string) *bytes.Buffer {
	t.Helper()
	req := types.LintRequest{
		DocumentText: text,
		Context:      types.DefaultContext(),
	}
	data, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewBuffer(data)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body["rule_agents"], "GENERALSTRUCTURE")
}

func TestHandleLint(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/lint", lintBody(t, "Documento sin las secciones obligatorias."))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report types.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Success)
	assert.NotEmpty(t, report.RequestID)
	assert.Contains(t, report.AgentsRun, "DOCUMENTPROFILE")
	assert.Contains(t, report.AgentsRun, "GENERALSTRUCTURE")

	// The structural rule fires: neither target section exists.
	found := false
	for _, f := range report.Findings {
		if f.RuleID == "CUN-GS-001" {
			found = true
		}
	}
	assert.True(t, found, "missing-section finding expected")
	assert.Equal(t, report.Summary, types.Summarize(report.Findings))
}

func TestHandleLint_InvalidJSON(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/lint", bytes.NewBufferString("{broken"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLint_EmptyBody(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/lint", bytes.NewBuffer(nil))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleScore(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/score", lintBody(t, "Documento sin las secciones obligatorias."))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "institutional_apa7_cun", resp.PolicyCompliance.PolicyType)
	assert.LessOrEqual(t, resp.PolicyCompliance.Score, 100.0)
}

func TestHandleReview(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/review", lintBody(t, "Documento sin las secciones obligatorias."))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ReviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CriticalReview.MainStatus)
	assert.NotEmpty(t, resp.CriticalReview.SuggestedFixOrder)
}

func TestHandleListRules(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/rules", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RulesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "apa7_cun", resp.ProfileID)
	require.Contains(t, resp.Agents, "GENERALSTRUCTURE")
	assert.Len(t, resp.Agents["GENERALSTRUCTURE"], 1)
	assert.Equal(t, 1, resp.Diagnostics.RuleCount)
}

func TestHandleReloadRules(t *testing.T) {
	srv := newTestServer(t, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/rules/reload", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "reloaded", body["status"])
}

func TestAPIKeyEnforcement(t *testing.T) {
	srv := newTestServer(t, config.Config{APIKeys: []string{"secret"}})

	// Without the key
	req := httptest.NewRequest(http.MethodGet, "/rules", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// With the key
	req = httptest.NewRequest(http.MethodGet, "/rules", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, config.Config{CORSOrigins: []string{"https://example.edu"}})

	req := httptest.NewRequest(http.MethodOptions, "/lint", nil)
	req.Header.Set("Origin", "https://example.edu")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://example.edu", rec.Header().Get("Access-Control-Allow-Origin"))

	// Unlisted origin gets no allow header
	req = httptest.NewRequest(http.MethodOptions, "/lint", nil)
	req.Header.Set("Origin", "https://other.example")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
