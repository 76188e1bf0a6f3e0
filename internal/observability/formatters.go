// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/dcastillo/apa7-lint/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProfile outputs a human-readable summary of the inferred profile.
func (p *Printer) PrintProfile(profile types.Profile) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Type:        %s\n", valueOr(profile.InferredType, "unknown")))
	sb.WriteString(fmt.Sprintf("Language:    %s\n", valueOr(profile.Language, "unknown")))
	sb.WriteString(fmt.Sprintf("Style:       %s\n", valueOr(profile.Style, "unknown")))
	sb.WriteString(fmt.Sprintf("Institution: %s\n", valueOr(profile.Institution, "unknown")))
	sb.WriteString(fmt.Sprintf("Confidence:  %.0f%%", profile.Confidence*100))

	p.printBox("Document Profile", sb.String())
}

// PrintReport outputs the summary and the leading findings of a lint report.
func (p *Printer) PrintReport(report types.Report) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Errors:      %d\n", report.Summary.ErrorCount))
	sb.WriteString(fmt.Sprintf("Warnings:    %d\n", report.Summary.WarningCount))
	sb.WriteString(fmt.Sprintf("Suggestions: %d\n", report.Summary.SuggestionCount))
	sb.WriteString(fmt.Sprintf("Agents run:  %d\n", len(report.AgentsRun)))
	sb.WriteString(fmt.Sprintf("Elapsed:     %.1f ms\n", report.ElapsedMS))

	if len(report.Findings) > 0 {
		sb.WriteString("\nFindings:\n")
		count := min(len(report.Findings), maxItemsToShow)
		for i := 0; i < count; i++ {
			f := report.Findings[i]
			sb.WriteString(fmt.Sprintf("  • [%s] %s: %s\n", f.Severity, f.RuleID, f.Message))
		}
		if len(report.Findings) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Findings)-maxItemsToShow))
		}
	}

	p.printBox("Lint Report", strings.TrimRight(sb.String(), "\n"))
}

// PrintCompliance outputs the policy compliance summary.
func (p *Printer) PrintCompliance(summary types.PolicyComplianceSummary) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Score:  %.0f / 100\n", summary.Score))
	sb.WriteString(fmt.Sprintf("Policy: %s\n", summary.PolicyType))

	if len(summary.PassedPolicies) > 0 {
		sb.WriteString("\nPassed:\n")
		for _, name := range summary.PassedPolicies {
			sb.WriteString(fmt.Sprintf("  • %s\n", name))
		}
	}
	if len(summary.FailedPolicies) > 0 {
		sb.WriteString("\nFailed:\n")
		for _, name := range summary.FailedPolicies {
			sb.WriteString(fmt.Sprintf("  • %s\n", name))
		}
	}

	p.printBox("Policy Compliance", strings.TrimRight(sb.String(), "\n"))
}

// PrintReview outputs the critical review: status, top issues and fix order.
func (p *Printer) PrintReview(summary types.CriticalReviewSummary) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Status: %s\n", summary.MainStatus))

	if len(summary.TopIssues) > 0 {
		sb.WriteString("\nTop issues:\n")
		for _, issue := range summary.TopIssues {
			sb.WriteString(fmt.Sprintf("  • [%s] %s (%d)\n", issue.Severity, issue.IssueType, issue.Count))
		}
	}
	if len(summary.SuggestedFixOrder) > 0 {
		sb.WriteString("\nFix order:\n")
		for i, category := range summary.SuggestedFixOrder {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, category))
		}
	}

	p.printBox("Critical Review", strings.TrimRight(sb.String(), "\n"))
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
