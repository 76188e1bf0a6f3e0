// Package types provides type definitions for structured data used throughout the apa7-lint engine.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dcastillo/apa7-lint/internal/rules"
)

// Context carries the caller-declared facts about the document being linted.
type Context struct {
	DocumentType   string          `json:"document_type,omitempty"`
	Style          string          `json:"style,omitempty"`
	Institution    string          `json:"institution,omitempty"`
	Language       string          `json:"language,omitempty" validate:"omitempty,oneof=es en"`
	ProfileVariant string          `json:"profile_variant,omitempty" validate:"omitempty,oneof=apa7_global apa7_institutional apa7_both"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	Layout         *DocumentLayout `json:"layout,omitempty"`
}

// DefaultContext returns a context with the engine's defaults filled in.
func DefaultContext() Context {
	return Context{
		Style:       "APA7",
		Institution: "CUN",
		Language:    "es",
	}
}

// Profile is the characterization of a document inferred before the rule
// agents run. It is created once per request and read-only afterwards.
type Profile struct {
	InferredType string   `json:"inferred_type,omitempty"`
	Language     string   `json:"language,omitempty"`
	Style        string   `json:"style,omitempty"`
	Institution  string   `json:"institution,omitempty"`
	Confidence   float64  `json:"confidence"`
	RawTags      []string `json:"raw_tags,omitempty"`
}

// Location is the approximate position of a finding in the document.
type Location struct {
	Line        *int   `json:"line,omitempty"`
	Column      *int   `json:"column,omitempty"`
	StartOffset *int   `json:"start_offset,omitempty"`
	EndOffset   *int   `json:"end_offset,omitempty"`
	Section     string `json:"section,omitempty"`
}

// Finding is one reported rule outcome: a violation or a notable observation.
// Findings are request-scoped and never mutated after creation.
type Finding struct {
	ID         string         `json:"id"`
	AgentID    string         `json:"agent_id"`
	RuleID     string         `json:"rule_id,omitempty"`
	Severity   rules.Severity `json:"severity"`
	Category   string         `json:"category"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Details    string         `json:"details,omitempty"`
	Location   *Location      `json:"location,omitempty"`
	Snippet    string         `json:"snippet,omitempty"`
}

// Summary is the numeric rollup of a finding list.
type Summary struct {
	ErrorCount      int `json:"error_count"`
	WarningCount    int `json:"warning_count"`
	SuggestionCount int `json:"suggestion_count"`
}

// Summarize counts findings by severity.
func Summarize(findings []Finding) Summary {
	var s Summary
	for _, f := range findings {
		switch f.Severity {
		case rules.SeverityError:
			s.ErrorCount++
		case rules.SeverityWarning:
			s.WarningCount++
		default:
			s.SuggestionCount++
		}
	}
	return s
}

// LintRequest is the input payload for one analysis run.
type LintRequest struct {
	DocumentText string   `json:"document_text"`
	Context      Context  `json:"context"`
	Agents       []string `json:"agents,omitempty"`
}

// Validate validates the LintRequest using the validator.
func (r *LintRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Report is the merged result of one analysis run.
type Report struct {
	Success   bool      `json:"success"`
	RequestID string    `json:"request_id,omitempty"`
	Findings  []Finding `json:"findings"`
	Summary   Summary   `json:"summary"`
	AgentsRun []string  `json:"agents_run"`
	ElapsedMS float64   `json:"elapsed_ms"`
	Profile   Profile   `json:"profile"`
	Timestamp time.Time `json:"timestamp"`
}

// PolicyComplianceSummary is the derived 0-100 compliance view of a report.
type PolicyComplianceSummary struct {
	Score          float64  `json:"score"`
	PolicyType     string   `json:"policy_type"`
	PassedPolicies []string `json:"passed_policies"`
	FailedPolicies []string `json:"failed_policies"`
	Notes          string   `json:"notes,omitempty"`
}

// ReviewStatus is the overall verdict of a critical review.
type ReviewStatus string

// Review statuses.
const (
	StatusOK               ReviewStatus = "OK"
	StatusNeedsImprovement ReviewStatus = "NEEDS_IMPROVEMENT"
	StatusCritical         ReviewStatus = "CRITICAL"
)

// IssuesByCategory counts findings of one category by severity.
type IssuesByCategory struct {
	Category        string `json:"category"`
	ErrorCount      int    `json:"error_count"`
	WarningCount    int    `json:"warning_count"`
	SuggestionCount int    `json:"suggestion_count"`
}

// TopIssue is one ranked entry in the critical review summary.
type TopIssue struct {
	IssueType       string         `json:"issue_type"`
	Severity        rules.Severity `json:"severity"`
	Message         string         `json:"message"`
	Count           int            `json:"count"`
	SuggestedAction string         `json:"suggested_action"`
}

// CriticalReviewSummary is the executive summary synthesized from findings,
// profile and compliance score. It is the terminal artifact of the pipeline.
type CriticalReviewSummary struct {
	MainStatus        ReviewStatus       `json:"main_status"`
	IssuesByCategory  []IssuesByCategory `json:"issues_by_category"`
	TopIssues         []TopIssue         `json:"top_issues"`
	SuggestedFixOrder []string           `json:"suggested_fix_order"`
	Notes             string             `json:"notes,omitempty"`
}
