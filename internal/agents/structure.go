package agents

import (
	"context"
	"regexp"
	"strings"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/sections"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// AgentIDStructure identifies the general-structure agent.
const AgentIDStructure = "GENERALSTRUCTURE"

// structureCategory is the finding category emitted by this agent.
const structureCategory = "structure"

// StructureAgent evaluates structural and scoped regex rules: presence and
// order of target sections, and expected patterns at document or section scope.
// Rules with checkType "semantic" produce no automatic findings; "llm_semantic"
// rules are delegated to the optional LLM rule runner.
type StructureAgent struct {
	lib    *rules.Library
	runner LLMRuleRunner
}

// NewStructureAgent creates the general-structure agent. The runner may be nil;
// llm_semantic rules are then skipped without error.
func NewStructureAgent(lib *rules.Library, runner LLMRuleRunner) *StructureAgent {
	return &StructureAgent{lib: lib, runner: runner}
}

// ID returns the agent identifier.
func (a *StructureAgent) ID() string { return AgentIDStructure }

// Evaluate runs every rule of the agent against the document.
func (a *StructureAgent) Evaluate(ctx context.Context, text string, lintCtx types.Context, profile types.Profile) ([]types.Finding, error) {
	agentRules := a.lib.RulesFor(a.ID(), lintCtx.ProfileVariant)
	var findings []types.Finding

	if text == "" {
		// An empty document violates every structural and regex rule outright.
		for _, rule := range agentRules {
			if rule.CheckType != rules.CheckStructural && rule.CheckType != rules.CheckRegex {
				continue
			}
			findings = append(findings, ruleFinding(a.ID(), rule, "", structureCategory,
				"The document is empty or does not contain enough text to verify its general structure.",
				"", nil))
		}
		return findings, nil
	}

	lines := sections.SplitLines(text)
	index := sections.Detect(lines)

	for _, rule := range agentRules {
		switch rule.CheckType {
		case rules.CheckStructural:
			if violatesStructure(rule, index) {
				findings = append(findings, ruleFinding(a.ID(), rule, "", structureCategory,
					"The expected section structure is not met. Check the presence and order of the target sections.",
					snippetOf(text, 300), nil))
			}

		case rules.CheckRegex:
			var violated bool
			if rule.DetectionHints.Scope == rules.ScopeSection {
				violated = violatesSectionRegex(rule, lines, index)
			} else {
				violated = violatesDocumentRegex(rule, text)
			}
			if violated {
				findings = append(findings, ruleFinding(a.ID(), rule, "", structureCategory,
					"None of the rule's expected patterns were found in the indicated scope. "+
						"Check the presence, name and content of the section.",
					snippetOf(text, 300), nil))
			}

		case rules.CheckSemantic:
			// Reserved for deeper linguistic analysis; no automatic findings.

		case rules.CheckLLMSemantic:
			if a.runner == nil {
				continue
			}
			llmFindings, err := a.runner.RunRule(ctx, a.ID(), rule, text, lintCtx, profile)
			if err != nil {
				// A failing LLM collaborator degrades to no findings for the rule.
				continue
			}
			findings = append(findings, llmFindings...)
		}
	}

	return findings, nil
}

// violatesStructure reports whether a structural rule is violated: a target
// section is missing, or present targets are not in strictly increasing line
// order. A rule without section targets cannot be evaluated yet.
func violatesStructure(rule rules.Rule, index sections.Index) bool {
	targets := rule.DetectionHints.SectionTargets
	if len(targets) == 0 {
		return false
	}

	var positions []int
	for _, target := range targets {
		pos, ok := index[strings.ToUpper(target)]
		if !ok {
			return true
		}
		positions = append(positions, pos)
	}

	for i := 1; i < len(positions); i++ {
		if positions[i-1] > positions[i] {
			return true
		}
	}
	return false
}

// violatesDocumentRegex reports whether a document-scope regex rule is
// violated: none of its patterns match anywhere in the text. An invalid
// pattern is treated as non-matching.
func violatesDocumentRegex(rule rules.Rule, text string) bool {
	patterns := rule.DetectionHints.Regex
	if len(patterns) == 0 {
		return false
	}

	for _, pattern := range patterns {
		re, err := regexp.Compile("(?m)" + pattern)
		if err != nil {
			continue
		}
		if re.MatchString(text) {
			return false
		}
	}
	return true
}

// violatesSectionRegex reports whether a section-scope regex rule is violated:
// none of its patterns match inside the block of any present target section.
// Missing target sections are left to the structural checks.
func violatesSectionRegex(rule rules.Rule, lines []string, index sections.Index) bool {
	targets := rule.DetectionHints.SectionTargets
	patterns := rule.DetectionHints.Regex
	if len(targets) == 0 || len(patterns) == 0 {
		return false
	}

	for _, target := range targets {
		start, ok := index[strings.ToUpper(target)]
		if !ok {
			continue
		}
		block := index.Block(lines, start)

		for _, pattern := range patterns {
			re, err := regexp.Compile("(?m)" + pattern)
			if err != nil {
				continue
			}
			if re.MatchString(block) {
				return false
			}
		}
	}
	return true
}
