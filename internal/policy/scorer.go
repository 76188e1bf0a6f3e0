// Package policy derives an institutional compliance score from a finished
// lint report.
package policy

import (
	"fmt"
	"strings"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// criticalCategories are the finding categories that gate pass/fail policies.
// Order is fixed so the policy lists come out deterministic.
var criticalCategories = []string{"structure", "citations", "references"}

// Score deductions per finding severity.
const (
	errorPenalty   = 5.0
	warningPenalty = 2.0
)

// Scorer computes the 0-100 policy compliance view of a report.
type Scorer struct{}

// NewScorer creates a compliance scorer.
func NewScorer() *Scorer { return &Scorer{} }

// Score evaluates the findings against the institutional policy derived from
// the context and profile.
func (s *Scorer) Score(lintCtx types.Context, profile types.Profile, findings []types.Finding) types.PolicyComplianceSummary {
	policyType := policyType(lintCtx, profile)

	var passed, failed []string
	for _, cat := range criticalCategories {
		errors := 0
		for _, f := range findings {
			if f.Category == cat && f.Severity == rules.SeverityError {
				errors++
			}
		}
		if errors == 0 {
			passed = append(passed, "compliance_"+cat)
		} else {
			failed = append(failed, fmt.Sprintf("compliance_%s_%d_errors", cat, errors))
		}
	}

	return types.PolicyComplianceSummary{
		Score:          score(findings),
		PolicyType:     policyType,
		PassedPolicies: passed,
		FailedPolicies: failed,
		Notes:          notes(policyType, passed, failed),
	}
}

// policyType names the applicable policy from the declared or inferred
// institution, lowercased. Unknown institutions get the "unknown" policy.
func policyType(lintCtx types.Context, profile types.Profile) string {
	institution := lintCtx.Institution
	if institution == "" {
		institution = profile.Institution
	}
	if institution == "" {
		institution = "unknown"
	}
	return "institutional_apa7_" + strings.ToLower(institution)
}

// score starts at 100 and deducts per error and warning, clamped to [0, 100].
func score(findings []types.Finding) float64 {
	s := 100.0
	for _, f := range findings {
		switch f.Severity {
		case rules.SeverityError:
			s -= errorPenalty
		case rules.SeverityWarning:
			s -= warningPenalty
		}
	}
	if s < 0 {
		return 0
	}
	return s
}

func notes(policyType string, passed, failed []string) string {
	if len(passed) == 0 && len(failed) == 0 {
		return ""
	}
	parts := []string{"Política: " + policyType}
	if len(passed) > 0 {
		parts = append(parts, fmt.Sprintf("Cumplidas: %d", len(passed)))
	}
	if len(failed) > 0 {
		parts = append(parts, fmt.Sprintf("Incumplidas: %d", len(failed)))
	}
	return strings.Join(parts, " | ")
}
