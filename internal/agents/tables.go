package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// AgentIDTables identifies the tables-and-figures agent.
const AgentIDTables = "TABLESFIGURES"

// tablesCategory is the finding category emitted by this agent.
const tablesCategory = "layout"

// Acceptable size range for figures, in centimeters. The upper bound stays
// slightly under the usable width of an A4 page.
const (
	minFigureWidthCM  = 4.0
	maxFigureWidthCM  = 17.0
	minFigureHeightCM = 3.0
)

type tablesCheck func(rule rules.Rule, layout *types.DocumentLayout) []types.Finding

// TablesAgent validates table border style and figure sizes against the
// pre-built DocumentLayout supplied by the parsing collaborator. It never
// derives layout from raw text; without a layout it emits nothing.
type TablesAgent struct {
	lib      *rules.Library
	handlers map[string]tablesCheck
}

// NewTablesAgent creates the tables-and-figures agent with its rule-id
// handler table.
func NewTablesAgent(lib *rules.Library) *TablesAgent {
	a := &TablesAgent{lib: lib}
	a.handlers = map[string]tablesCheck{
		"CUN-TF-007": a.checkTableBorders,
		"CUN-TF-008": a.checkImageSizes,
	}
	return a
}

// ID returns the agent identifier.
func (a *TablesAgent) ID() string { return AgentIDTables }

// Evaluate runs the layout checks. Only semantic rules apply here; regex and
// structural rules have nothing to match against a layout description.
func (a *TablesAgent) Evaluate(_ context.Context, _ string, lintCtx types.Context, _ types.Profile) ([]types.Finding, error) {
	layout := lintCtx.Layout
	if layout == nil {
		return nil, nil
	}

	var findings []types.Finding
	for _, rule := range a.lib.RulesFor(a.ID(), lintCtx.ProfileVariant) {
		if rule.CheckType != rules.CheckSemantic {
			continue
		}
		handler, ok := a.handlers[rule.RuleID]
		if !ok {
			continue
		}
		findings = append(findings, handler(rule, layout)...)
	}
	return findings, nil
}

// checkTableBorders flags tables with vertical lines or with too many
// internal horizontal lines. APA tables carry three horizontal lines and no
// vertical ones.
func (a *TablesAgent) checkTableBorders(rule rules.Rule, layout *types.DocumentLayout) []types.Finding {
	var findings []types.Finding
	for _, table := range layout.Tables {
		b := table.Borders
		hasVerticals := b.HasVerticalInnerBorders || b.HasVerticalOuterBorders
		tooManyHLines := b.HorizontalInternalLines > 3
		if !hasVerticals && !tooManyHLines {
			continue
		}

		label := table.Label
		if label == "" {
			label = fmt.Sprintf("Tabla %d", table.Index+1)
		}

		var issues []string
		if hasVerticals {
			issues = append(issues, "the table has vertical lines")
		}
		if tooManyHLines {
			issues = append(issues, fmt.Sprintf("the table has %d internal horizontal lines", b.HorizontalInternalLines))
		}

		f := ruleFinding(a.ID(), rule, fmt.Sprintf("TABLE_%d", table.Index), tablesCategory,
			label+": "+strings.Join(issues, "; ")+". APA tables use three horizontal lines and no vertical lines.",
			table.Title, nil)
		findings = append(findings, f)
	}
	return findings
}

// checkImageSizes flags figures that fall outside the acceptable size range.
func (a *TablesAgent) checkImageSizes(rule rules.Rule, layout *types.DocumentLayout) []types.Finding {
	var findings []types.Finding
	for _, img := range layout.Images {
		tooSmall := img.WidthCM < minFigureWidthCM || img.HeightCM < minFigureHeightCM
		tooLarge := img.WidthCM > maxFigureWidthCM
		if !tooSmall && !tooLarge {
			continue
		}

		label := img.Label
		if label == "" {
			label = fmt.Sprintf("Figura %d", img.Index+1)
		}

		issues := []string{fmt.Sprintf("detected size: %.1fx%.1f cm", img.WidthCM, img.HeightCM)}
		if tooSmall {
			issues = append(issues, "the figure is too small to be legible")
		}
		if tooLarge {
			issues = append(issues, "the figure may exceed the page margins")
		}

		f := ruleFinding(a.ID(), rule, fmt.Sprintf("IMAGE_%d", img.Index), tablesCategory,
			label+": "+strings.Join(issues, "; "),
			img.Caption, nil)
		findings = append(findings, f)
	}
	return findings
}
