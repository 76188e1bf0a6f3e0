package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// AgentIDReferences identifies the reference-list agent.
const AgentIDReferences = "REFERENCES"

// referencesCategory is the finding category emitted by this agent.
const referencesCategory = "references"

// referencesDoc holds the per-request extraction shared by the checks.
type referencesDoc struct {
	text    string
	block   string
	entries []string
}

type referencesCheck func(rule rules.Rule, doc *referencesDoc) []types.Finding

// ReferencesAgent validates the reference list itself: alphabetical order and
// the preferred section header.
type ReferencesAgent struct {
	lib      *rules.Library
	handlers map[string]referencesCheck
}

// NewReferencesAgent creates the references agent with its rule-id handler table.
func NewReferencesAgent(lib *rules.Library) *ReferencesAgent {
	a := &ReferencesAgent{lib: lib}
	a.handlers = map[string]referencesCheck{
		"CUN-REF-001": a.checkAlphabeticalOrder,
		"CUN-REF-006": a.checkPreferredHeader,
	}
	return a
}

// ID returns the agent identifier.
func (a *ReferencesAgent) ID() string { return AgentIDReferences }

// Evaluate runs the reference-list checks over the raw text.
func (a *ReferencesAgent) Evaluate(_ context.Context, text string, lintCtx types.Context, _ types.Profile) ([]types.Finding, error) {
	block := extractReferencesBlock(text)
	doc := &referencesDoc{
		text:    text,
		block:   block,
		entries: extractReferenceEntries(block),
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

// checkAlphabeticalOrder compares each entry's first token against the sorted
// sequence and flags a single finding carrying both orders.
func (a *ReferencesAgent) checkAlphabeticalOrder(rule rules.Rule, doc *referencesDoc) []types.Finding {
	if len(doc.entries) == 0 {
		return nil
	}

	var keys []string
	for _, entry := range doc.entries {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}
		keys = append(keys, strings.ToUpper(fields[0]))
	}

	sortedKeys := append([]string(nil), keys...)
	sort.Strings(sortedKeys)

	ordered := true
	for i := range keys {
		if keys[i] != sortedKeys[i] {
			ordered = false
			break
		}
	}
	if ordered {
		return nil
	}

	snippet := strings.Join(doc.entries[:min(3, len(doc.entries))], "\n")
	f := ruleFinding(a.ID(), rule, "ORDER", referencesCategory,
		fmt.Sprintf("The current reference order is not alphabetical. Detected order: %v; expected order: %v", keys, sortedKeys),
		snippet, &types.Location{Section: "REFERENCIAS"})
	return []types.Finding{f}
}

// checkPreferredHeader flags a reference section headed only "BIBLIOGRAFÍA"
// when the standard "REFERENCIAS" header is expected.
func (a *ReferencesAgent) checkPreferredHeader(rule rules.Rule, doc *referencesDoc) []types.Finding {
	upper := strings.ToUpper(doc.text)
	if strings.Contains(upper, "REFERENCIAS") {
		return nil
	}
	if !strings.Contains(upper, "BIBLIOGRAFÍA") {
		return nil
	}

	snippet := ""
	if lines := strings.Split(doc.block, "\n"); len(lines) > 0 {
		snippet = lines[0]
	}
	f := ruleFinding(a.ID(), rule, "HEADER", referencesCategory,
		"A 'Bibliografía' header was detected but no 'REFERENCIAS'. The institutional guide prefers 'REFERENCIAS' as the standard header.",
		snippet, nil)
	return []types.Finding{f}
}
