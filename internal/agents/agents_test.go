package agents

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcastillo/apa7-lint/internal/rules"
)

// libWith builds a library whose profile holds exactly one rule file for the
// given agent.
func libWith(t *testing.T, agentID string, agentRules ...rules.Rule) *rules.Library {
	t.Helper()

	dir := t.TempDir()
	profileDir := filepath.Join(dir, "apa7_cun")
	require.NoError(t, os.MkdirAll(profileDir, 0o755))

	data, err := json.Marshal(rules.RuleFile{
		ProfileID: "apa7_cun",
		AgentID:   agentID,
		Rules:     agentRules,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(profileDir, "test.rules.json"), data, 0o644))

	lib, err := rules.NewLibrary(dir, "apa7_cun")
	require.NoError(t, err)
	return lib
}

// mkRule builds a minimal schema-valid rule.
func mkRule(id string, checkType rules.CheckType, severity rules.Severity) rules.Rule {
	return rules.Rule{
		RuleID:       id,
		Title:        "Regla " + id,
		Description:  "Descripción de la regla " + id,
		Source:       rules.SourceMixed,
		BaseStandard: "APA7",
		Severity:     severity,
		CheckType:    checkType,
		DetectionHints: rules.DetectionHints{
			Scope: rules.ScopeDocument,
		},
	}
}
