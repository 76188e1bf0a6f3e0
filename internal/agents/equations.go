package agents

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/sections"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// AgentIDEquations identifies the math/equations agent.
const AgentIDEquations = "EQUATIONS"

// equationsCategory is the finding category emitted by this agent.
const equationsCategory = "math_equations"

var (
	equationLinePattern   = regexp.MustCompile(`([A-Za-zÁÉÍÓÚÑ0-9)\]])\s*=\s*([-+*/A-Za-zÁÉÍÓÚÑ0-9])`)
	equationNumberPattern = regexp.MustCompile(`\((\d{1,3})\)`)
	equationRefPattern    = regexp.MustCompile(`(?i)ECUACI[ÓO]N(?:ES)?\s*\((\d{1,3})\)`)
)

// equationLine is one detected candidate equation line.
type equationLine struct {
	LineIndex int
	Text      string
	Number    int // 0 when the line carries no number tag
}

// EquationsAgent validates the numbering of displayed equations and the
// coherence between equation numbers and "ecuación (n)" references in the
// running text. It does not validate mathematical correctness.
type EquationsAgent struct {
	lib      *rules.Library
	handlers map[string]func(rule rules.Rule, doc *equationsDoc) []types.Finding
}

// equationsDoc holds the per-request equation extraction.
type equationsDoc struct {
	lines      []equationLine
	numbers    map[int]bool
	references map[int]bool
}

// NewEquationsAgent creates the equations agent with its rule-id handler table.
func NewEquationsAgent(lib *rules.Library) *EquationsAgent {
	a := &EquationsAgent{lib: lib}
	a.handlers = map[string]func(rules.Rule, *equationsDoc) []types.Finding{
		"CUN-ME-001": a.checkSequentialNumbering,
		"CUN-ME-002": a.checkDanglingReferences,
		"CUN-ME-003": a.checkUnusedNumbers,
	}
	return a
}

// ID returns the agent identifier.
func (a *EquationsAgent) ID() string { return AgentIDEquations }

// Evaluate detects equation lines and references, then runs the checks.
// Documents without candidate equations produce no findings.
func (a *EquationsAgent) Evaluate(_ context.Context, text string, lintCtx types.Context, _ types.Profile) ([]types.Finding, error) {
	eqLines := detectEquationLines(sections.SplitLines(text))
	if len(eqLines) == 0 {
		return nil, nil
	}

	doc := &equationsDoc{
		lines:      eqLines,
		numbers:    make(map[int]bool),
		references: make(map[int]bool),
	}
	for _, eq := range eqLines {
		if eq.Number > 0 {
			doc.numbers[eq.Number] = true
		}
	}
	for _, m := range equationRefPattern.FindAllStringSubmatch(text, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			doc.references[n] = true
		}
	}

	// A single numbered equation is not enough signal for any of the checks.
	if len(doc.numbers) < 2 {
		return nil, nil
	}

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

// detectEquationLines finds lines that look like simple equations: an "="
// flanked by alphanumerics, optionally tagged with a parenthesized number.
func detectEquationLines(lines []string) []equationLine {
	var eqLines []equationLine
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if !equationLinePattern.MatchString(stripped) {
			continue
		}

		number := 0
		if m := equationNumberPattern.FindStringSubmatch(stripped); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				number = n
			}
		}
		eqLines = append(eqLines, equationLine{LineIndex: i, Text: stripped, Number: number})
	}
	return eqLines
}

// checkSequentialNumbering verifies that the detected numbers form a
// contiguous range starting at their minimum. Fewer than two numbered
// equations is not enough signal to check.
func (a *EquationsAgent) checkSequentialNumbering(rule rules.Rule, doc *equationsDoc) []types.Finding {
	if len(doc.numbers) <= 1 {
		return nil
	}

	detected := sortedInts(doc.numbers)
	expected := make([]int, len(detected))
	for i := range expected {
		expected[i] = detected[0] + i
	}

	equal := true
	for i := range detected {
		if detected[i] != expected[i] {
			equal = false
			break
		}
	}
	if equal {
		return nil
	}

	var snippet []string
	for _, eq := range doc.lines {
		if eq.Number > 0 {
			snippet = append(snippet, fmt.Sprintf("Line %d: %s", eq.LineIndex+1, eq.Text))
		}
	}
	f := ruleFinding(a.ID(), rule, "SEQUENCE", equationsCategory,
		fmt.Sprintf("detected=%v; expected=%v", detected, expected),
		strings.Join(snippet, "\n"), nil)
	return []types.Finding{f}
}

// checkDanglingReferences flags every "ecuación (n)" reference whose number
// matches no detected equation.
func (a *EquationsAgent) checkDanglingReferences(rule rules.Rule, doc *equationsDoc) []types.Finding {
	var findings []types.Finding
	for _, n := range sortedInts(doc.references) {
		if doc.numbers[n] {
			continue
		}
		findings = append(findings, ruleFinding(a.ID(), rule,
			fmt.Sprintf("MISSING_EQ:%d", n), equationsCategory,
			fmt.Sprintf("A reference to equation (%d) was found, but no equation numbered (%d) was detected.", n, n),
			fmt.Sprintf("ecuación (%d)", n), nil))
	}
	return findings
}

// checkUnusedNumbers flags every numbered equation that is never referenced
// in the text. Usually a suggestion, not an error.
func (a *EquationsAgent) checkUnusedNumbers(rule rules.Rule, doc *equationsDoc) []types.Finding {
	var findings []types.Finding
	for _, n := range sortedInts(doc.numbers) {
		if doc.references[n] {
			continue
		}
		findings = append(findings, ruleFinding(a.ID(), rule,
			fmt.Sprintf("UNUSED_EQ:%d", n), equationsCategory,
			fmt.Sprintf("Equation (%d) is numbered but never referenced in the text.", n),
			fmt.Sprintf("(%d)", n), nil))
	}
	return findings
}

// sortedInts returns the keys of a set in ascending order.
func sortedInts(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
