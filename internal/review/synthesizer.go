// Package review synthesizes the executive critical-review summary from the
// findings of a finished lint run. It never looks at the raw document text.
package review

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// maxTopIssues caps the ranked issue list.
const maxTopIssues = 5

// Status thresholds over the compliance score and total error count.
const (
	criticalScoreBelow     = 60.0
	improvementScoreBelow  = 85.0
	criticalErrorsAbove    = 20
	improvementErrorsAbove = 5
)

// categoryPriority is the recommended fix order across categories.
var categoryPriority = []string{
	"structure",
	"citations",
	"references",
	"math_format",
	"math_equations",
	"code_format",
	"code_blocks",
	"academic_style",
	"format",
	"layout",
	"metadata",
}

var categoryMessages = map[string]string{
	"structure":      "Problemas en la estructura del documento",
	"citations":      "Inconsistencias en las citas",
	"references":     "Errores en la lista de referencias",
	"math_format":    "Formateo incorrecto de ecuaciones",
	"math_equations": "Errores en ecuaciones matemáticas",
	"code_format":    "Formateo incorrecto de código",
	"code_blocks":    "Problemas en bloques de código",
	"academic_style": "Estilo académico incorrecto",
	"format":         "Problemas de formato general",
	"layout":         "Problemas de maquetación",
	"metadata":       "Inconsistencias en metadatos",
}

var categoryActions = map[string]string{
	"structure":      "Revisa la estructura del documento y asegura que contenga todas las secciones requeridas en el orden correcto.",
	"citations":      "Verifica que todas las citas en texto sigan el formato APA7 correcto.",
	"references":     "Revisa la lista de referencias para asegurar que cumple con el formato APA7.",
	"math_format":    "Corrige el formateo de todas las ecuaciones matemáticas según APA7.",
	"math_equations": "Verifica la correcta escritura y numeración de ecuaciones.",
	"code_format":    "Asegura que el código sigue las convenciones de formato establecidas.",
	"code_blocks":    "Verifica que los bloques de código estén correctamente formateados.",
	"academic_style": "Mejora el estilo académico del documento.",
	"format":         "Corrige los problemas de formato general del documento.",
	"layout":         "Ajusta la maquetación del documento según los estándares requeridos.",
	"metadata":       "Actualiza los metadatos del documento para asegurar consistencia.",
}

// Synthesizer builds critical-review summaries.
type Synthesizer struct{}

// NewSynthesizer creates a review synthesizer.
func NewSynthesizer() *Synthesizer { return &Synthesizer{} }

// Synthesize reviews the findings and returns the action-oriented summary.
// The compliance summary may be nil; status then falls back to error counts.
func (s *Synthesizer) Synthesize(profile types.Profile, findings []types.Finding, compliance *types.PolicyComplianceSummary) types.CriticalReviewSummary {
	byCategory := groupByCategory(findings)
	status := mainStatus(byCategory, compliance)

	return types.CriticalReviewSummary{
		MainStatus:        status,
		IssuesByCategory:  byCategory,
		TopIssues:         topIssues(byCategory),
		SuggestedFixOrder: fixOrder(byCategory),
		Notes:             notes(profile, compliance, status),
	}
}

// groupByCategory counts findings per category by severity, in first-seen
// category order so the output is stable for a given finding sequence.
func groupByCategory(findings []types.Finding) []types.IssuesByCategory {
	index := make(map[string]int)
	var grouped []types.IssuesByCategory

	for _, f := range findings {
		i, seen := index[f.Category]
		if !seen {
			i = len(grouped)
			index[f.Category] = i
			grouped = append(grouped, types.IssuesByCategory{Category: f.Category})
		}
		switch f.Severity {
		case rules.SeverityError:
			grouped[i].ErrorCount++
		case rules.SeverityWarning:
			grouped[i].WarningCount++
		default:
			grouped[i].SuggestionCount++
		}
	}
	return grouped
}

// topIssues ranks categories by error count, then warning count, and keeps
// at most five non-empty entries.
func topIssues(byCategory []types.IssuesByCategory) []types.TopIssue {
	ranked := make([]types.IssuesByCategory, len(byCategory))
	copy(ranked, byCategory)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ErrorCount != ranked[j].ErrorCount {
			return ranked[i].ErrorCount > ranked[j].ErrorCount
		}
		return ranked[i].WarningCount > ranked[j].WarningCount
	})

	var top []types.TopIssue
	for _, ibc := range ranked {
		if len(top) == maxTopIssues {
			break
		}
		total := ibc.ErrorCount + ibc.WarningCount + ibc.SuggestionCount
		if total == 0 {
			continue
		}

		severity := rules.SeveritySuggestion
		if ibc.ErrorCount > 0 {
			severity = rules.SeverityError
		} else if ibc.WarningCount > 0 {
			severity = rules.SeverityWarning
		}

		top = append(top, types.TopIssue{
			IssueType:       ibc.Category,
			Severity:        severity,
			Message:         categoryMessage(ibc.Category),
			Count:           total,
			SuggestedAction: categoryAction(ibc.Category),
		})
	}
	return top
}

// mainStatus derives the overall verdict from the compliance score and the
// total error count.
func mainStatus(byCategory []types.IssuesByCategory, compliance *types.PolicyComplianceSummary) types.ReviewStatus {
	totalErrors := 0
	for _, ibc := range byCategory {
		totalErrors += ibc.ErrorCount
	}

	if compliance != nil {
		switch {
		case compliance.Score < criticalScoreBelow || totalErrors > criticalErrorsAbove:
			return types.StatusCritical
		case compliance.Score < improvementScoreBelow || totalErrors > improvementErrorsAbove:
			return types.StatusNeedsImprovement
		default:
			return types.StatusOK
		}
	}

	switch {
	case totalErrors > criticalErrorsAbove:
		return types.StatusCritical
	case totalErrors > improvementErrorsAbove:
		return types.StatusNeedsImprovement
	default:
		return types.StatusOK
	}
}

// fixOrder lists the categories with findings, priority categories first,
// unlisted categories after in first-seen order.
func fixOrder(byCategory []types.IssuesByCategory) []string {
	present := make(map[string]bool, len(byCategory))
	for _, ibc := range byCategory {
		present[ibc.Category] = true
	}

	var order []string
	listed := make(map[string]bool)
	for _, cat := range categoryPriority {
		if present[cat] {
			order = append(order, cat)
			listed[cat] = true
		}
	}
	for _, ibc := range byCategory {
		if !listed[ibc.Category] {
			order = append(order, ibc.Category)
			listed[ibc.Category] = true
		}
	}
	return order
}

func categoryMessage(category string) string {
	if msg, ok := categoryMessages[category]; ok {
		return msg
	}
	return fmt.Sprintf("Problemas en %s", category)
}

func categoryAction(category string) string {
	if action, ok := categoryActions[category]; ok {
		return action
	}
	return fmt.Sprintf("Corrige los problemas en %s.", category)
}

func notes(profile types.Profile, compliance *types.PolicyComplianceSummary, status types.ReviewStatus) string {
	var parts []string
	if profile.Confidence > 0 {
		parts = append(parts, fmt.Sprintf("Confianza en perfil: %.0f%%", profile.Confidence*100))
	}
	if compliance != nil {
		parts = append(parts, fmt.Sprintf("Cumplimiento de política: %g%%", compliance.Score))
	}
	if status == types.StatusCritical {
		parts = append(parts, "El documento requiere revisión crítica urgente.")
	}
	return strings.Join(parts, " | ")
}
