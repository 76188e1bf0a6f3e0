package agents

import (
	"context"
	"regexp"
	"strings"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/sections"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// AgentIDScientific identifies the scientific-design agent.
const AgentIDScientific = "SCIENTIFICDESIGN"

// scientificCategory is the finding category emitted by this agent.
const scientificCategory = "scientific_design"

// researchDocumentTypes are the inferred types this agent applies to.
var researchDocumentTypes = map[string]bool{
	"articulo_cientifico":   true,
	"informe_investigacion": true,
	"tesis_trabajo_grado":   true,
}

var scientificHeaderPattern = regexp.MustCompile(`^[A-ZÁÉÍÓÚÑ ]{3,}$`)

// Canonical header keys used by the ordering checks.
const (
	headerMethod       = "METODO"
	headerResults      = "RESULTADOS"
	headerDiscussion   = "DISCUSION"
	headerConclusions  = "CONCLUSIONES"
	headerIntroduction = "INTRODUCCION"
	headerFramework    = "MARCO_TEORICO"
)

// scientificDoc holds the per-request extraction shared by the checks.
type scientificDoc struct {
	upperLines []string
	headers    map[string]int
}

type scientificCheck func(rule rules.Rule, doc *scientificDoc) []types.Finding

// ScientificAgent applies design rules for strictly scientific documents:
// articles, research reports and theses. It is inactive for any other
// inferred document type.
type ScientificAgent struct {
	lib      *rules.Library
	handlers map[string]scientificCheck
}

// NewScientificAgent creates the scientific-design agent with its rule-id
// handler table.
func NewScientificAgent(lib *rules.Library) *ScientificAgent {
	a := &ScientificAgent{lib: lib}
	a.handlers = map[string]scientificCheck{
		"CUN-SD-001": a.checkProblemAndObjectives,
		"CUN-SD-002": a.checkMethodSection,
		"CUN-SD-003": a.checkResultsAndDiscussion,
		"CUN-SD-004": a.checkIMRyDOrder,
		"CUN-SD-005": a.checkObjectivesAndConclusions,
		"CUN-SD-006": a.checkLimitations,
	}
	return a
}

// ID returns the agent identifier.
func (a *ScientificAgent) ID() string { return AgentIDScientific }

// Evaluate runs the scientific-design checks when the inferred document type
// is a research document.
func (a *ScientificAgent) Evaluate(_ context.Context, text string, lintCtx types.Context, profile types.Profile) ([]types.Finding, error) {
	if !researchDocumentTypes[profile.InferredType] {
		return nil, nil
	}

	lines := sections.SplitLines(text)
	doc := &scientificDoc{upperLines: make([]string, len(lines))}
	for i, line := range lines {
		doc.upperLines[i] = strings.ToUpper(strings.TrimSpace(line))
	}
	doc.headers = detectScientificHeaders(doc.upperLines)

	var findings []types.Finding
	for _, rule := range a.lib.RulesFor(a.ID(), lintCtx.ProfileVariant) {
		handler, ok := a.handlers[rule.RuleID]
		if !ok {
			continue
		}
		findings = append(findings, handler(rule, doc)...)
	}
	return findings, nil
}

// detectScientificHeaders maps canonical section keys to the first line that
// carries an upper-case header variant of that section.
func detectScientificHeaders(upperLines []string) map[string]int {
	headers := make(map[string]int)
	record := func(key string, idx int) {
		if _, seen := headers[key]; !seen {
			headers[key] = idx
		}
	}

	for idx, line := range upperLines {
		if line == "" || !scientificHeaderPattern.MatchString(line) {
			continue
		}
		switch {
		case strings.Contains(line, "MÉTODO") || strings.Contains(line, "METODOLOG"):
			record(headerMethod, idx)
		case strings.Contains(line, "RESULTADOS"):
			record(headerResults, idx)
		case strings.Contains(line, "DISCUSIÓN") || strings.Contains(line, "ANÁLISIS Y DISCUSIÓN"):
			record(headerDiscussion, idx)
		case strings.Contains(line, "CONCLUSIONES"):
			record(headerConclusions, idx)
		case strings.Contains(line, "INTRODUCCIÓN"):
			record(headerIntroduction, idx)
		case strings.Contains(line, "MARCO TEÓRICO") || strings.Contains(line, "MARCO REFERENCIAL"):
			record(headerFramework, idx)
		}
	}
	return headers
}

// checkProblemAndObjectives requires a stated research problem or objectives.
func (a *ScientificAgent) checkProblemAndObjectives(rule rules.Rule, doc *scientificDoc) []types.Finding {
	for _, line := range doc.upperLines {
		if strings.Contains(line, "PROBLEMA DE INVESTIGACIÓN") ||
			strings.Contains(line, "OBJETIVO GENERAL") ||
			strings.Contains(line, "OBJETIVOS") {
			return nil
		}
	}

	f := ruleFinding(a.ID(), rule, "NO_PROBLEM_OBJECTIVES", scientificCategory,
		"No headers or phrases were detected that clearly state the research problem or the objectives of the study.",
		strings.Join(doc.upperLines[:min(20, len(doc.upperLines))], "\n"), nil)
	return []types.Finding{f}
}

// checkMethodSection requires a method or methodology section.
func (a *ScientificAgent) checkMethodSection(rule rules.Rule, doc *scientificDoc) []types.Finding {
	if _, ok := doc.headers[headerMethod]; ok {
		return nil
	}
	f := ruleFinding(a.ID(), rule, "NO_METHOD", scientificCategory,
		"No section with a 'MÉTODO' or 'METODOLOGÍA' header was identified.", "", nil)
	return []types.Finding{f}
}

// checkResultsAndDiscussion requires both a results and a discussion section.
func (a *ScientificAgent) checkResultsAndDiscussion(rule rules.Rule, doc *scientificDoc) []types.Finding {
	_, hasResults := doc.headers[headerResults]
	_, hasDiscussion := doc.headers[headerDiscussion]
	if hasResults && hasDiscussion {
		return nil
	}

	var missing []string
	if !hasResults {
		missing = append(missing, "RESULTADOS")
	}
	if !hasDiscussion {
		missing = append(missing, "DISCUSIÓN")
	}

	f := ruleFinding(a.ID(), rule, "MISSING_SECTIONS", scientificCategory,
		"The following scientific-report sections were not identified: "+strings.Join(missing, ", "),
		"", nil)
	return []types.Finding{f}
}

// checkIMRyDOrder verifies a coherent introduction/framework -> method ->
// results -> discussion -> conclusions ordering. It only applies when at
// least three of the four core sections are present.
func (a *ScientificAgent) checkIMRyDOrder(rule rules.Rule, doc *scientificDoc) []types.Finding {
	core := []string{headerMethod, headerResults, headerDiscussion, headerConclusions}
	present := 0
	for _, key := range core {
		if _, ok := doc.headers[key]; ok {
			present++
		}
	}
	if present < 3 {
		return nil
	}

	pairs := [][2]string{
		{headerIntroduction, headerMethod},
		{headerFramework, headerMethod},
		{headerMethod, headerResults},
		{headerResults, headerDiscussion},
		{headerDiscussion, headerConclusions},
	}
	orderOK := true
	for _, pair := range pairs {
		first, okFirst := doc.headers[pair[0]]
		second, okSecond := doc.headers[pair[1]]
		if okFirst && okSecond && first > second {
			orderOK = false
			break
		}
	}
	if orderOK {
		return nil
	}

	f := ruleFinding(a.ID(), rule, "ORDER", scientificCategory,
		"The main sections of the research report do not follow the typical sequence "+
			"(Introduction/Theoretical framework -> Method -> Results -> Discussion -> Conclusions).",
		"", nil)
	return []types.Finding{f}
}

// checkObjectivesAndConclusions expects mentions of both objectives and
// conclusions.
func (a *ScientificAgent) checkObjectivesAndConclusions(rule rules.Rule, doc *scientificDoc) []types.Finding {
	hasObjectives := false
	hasConclusions := false
	for _, line := range doc.upperLines {
		if strings.Contains(line, "OBJETIVO GENERAL") || strings.Contains(line, "OBJETIVOS ESPECÍFICOS") {
			hasObjectives = true
		}
		if strings.Contains(line, "CONCLUSIONES") {
			hasConclusions = true
		}
	}
	if hasObjectives && hasConclusions {
		return nil
	}

	var missing []string
	if !hasObjectives {
		missing = append(missing, "objectives")
	}
	if !hasConclusions {
		missing = append(missing, "conclusions")
	}

	tail := doc.upperLines[max(0, len(doc.upperLines)-20):]
	f := ruleFinding(a.ID(), rule, "OBJECTIVES_CONCLUSIONS", scientificCategory,
		"A scientific design is expected to state objectives and conclusions. Not clearly detected here: "+strings.Join(missing, ", "),
		strings.Join(tail, "\n"), nil)
	return []types.Finding{f}
}

// checkLimitations suggests an explicit limitations section when none exists.
func (a *ScientificAgent) checkLimitations(rule rules.Rule, doc *scientificDoc) []types.Finding {
	for _, line := range doc.upperLines {
		if strings.Contains(line, "LIMITACIONES") || strings.Contains(line, "LIMITES DEL ESTUDIO") {
			return nil
		}
	}

	f := ruleFinding(a.ID(), rule, "NO_LIMITATIONS", scientificCategory,
		"No section or explicit mention of the study's limitations was identified; stating the scope and limits of the work is recommended.",
		"", nil)
	return []types.Finding{f}
}
