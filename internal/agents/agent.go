// Package agents implements the rule evaluation agents of the lint engine.
// Each agent evaluates one domain's rules against the document text, the
// caller context and the inferred profile, and returns findings.
package agents

import (
	"context"
	"fmt"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// Agent is the uniform contract every rule evaluation agent implements.
// Evaluate must be safe for concurrent use; agents never mutate shared state.
type Agent interface {
	// ID returns the agent identifier used to look up its rules (e.g. "REFERENCES").
	ID() string
	// Evaluate runs the agent's rules against the document and returns findings.
	Evaluate(ctx context.Context, text string, lintCtx types.Context, profile types.Profile) ([]types.Finding, error)
}

// LLMRuleRunner evaluates llm_semantic rules through an external LLM
// collaborator. Agents that support llm_semantic rules hold an optional
// runner; a nil runner means those rules are silently skipped.
type LLMRuleRunner interface {
	RunRule(ctx context.Context, agentID string, rule rules.Rule, text string, lintCtx types.Context, profile types.Profile) ([]types.Finding, error)
}

// ruleFinding builds a finding for a rule with a deterministic id. The key
// distinguishes multiple findings of the same rule; it may be empty.
func ruleFinding(agentID string, rule rules.Rule, key, category, details, snippet string, loc *types.Location) types.Finding {
	id := fmt.Sprintf("%s:%s", agentID, rule.RuleID)
	if key != "" {
		id = fmt.Sprintf("%s:%s", id, key)
	}
	return types.Finding{
		ID:         id,
		AgentID:    agentID,
		RuleID:     rule.RuleID,
		Severity:   rule.Severity,
		Category:   category,
		Message:    rule.Description,
		Suggestion: rule.AutoFixHint,
		Details:    details,
		Location:   loc,
		Snippet:    snippet,
	}
}

// snippetOf returns at most n characters from the start of text.
func snippetOf(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

// offsetLocation builds a location covering a character offset range.
func offsetLocation(start, end int) *types.Location {
	return &types.Location{StartOffset: &start, EndOffset: &end}
}
