package agents

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// AgentIDFormat identifies the global-format agent.
const AgentIDFormat = "GLOBALFORMAT"

// formatCategory is the finding category emitted by this agent.
const formatCategory = "format"

// Accepted global-format ranges.
var allowedFontFamilies = []string{"Times New Roman", "Arial"}

const (
	minFontSize    = 11.0
	maxFontSize    = 12.0
	minLineSpacing = 1.8
	maxLineSpacing = 2.2
	minMarginCM    = 2.3
	maxMarginCM    = 2.7
)

type formatCheck func(rule rules.Rule, metadata map[string]any) []types.Finding

// FormatAgent validates document-wide format facts (font, line spacing, page
// margins) from the caller-supplied metadata map. Without metadata there is
// nothing to validate and the agent emits no findings.
type FormatAgent struct {
	lib      *rules.Library
	handlers map[string]formatCheck
}

// NewFormatAgent creates the global-format agent with its rule-id handler table.
func NewFormatAgent(lib *rules.Library) *FormatAgent {
	a := &FormatAgent{lib: lib}
	a.handlers = map[string]formatCheck{
		"CUN-GF-001": a.checkFont,
		"CUN-GF-002": a.checkLineSpacing,
		"CUN-GF-003": a.checkMargins,
	}
	return a
}

// ID returns the agent identifier.
func (a *FormatAgent) ID() string { return AgentIDFormat }

// Evaluate runs the global-format checks against the request metadata.
func (a *FormatAgent) Evaluate(_ context.Context, _ string, lintCtx types.Context, _ types.Profile) ([]types.Finding, error) {
	if len(lintCtx.Metadata) == 0 {
		return nil, nil
	}

	var findings []types.Finding
	for _, rule := range a.lib.RulesFor(a.ID(), lintCtx.ProfileVariant) {
		handler, ok := a.handlers[rule.RuleID]
		if !ok {
			continue
		}
		findings = append(findings, handler(rule, lintCtx.Metadata)...)
	}
	return findings, nil
}

// checkFont validates font_family against the allowed families and font_size
// against the accepted point range. All issues aggregate into one finding.
func (a *FormatAgent) checkFont(rule rules.Rule, metadata map[string]any) []types.Finding {
	var issues []string

	if family, ok := metadata["font_family"].(string); ok && family != "" {
		allowed := false
		for _, f := range allowedFontFamilies {
			if family == f {
				allowed = true
				break
			}
		}
		if !allowed {
			issues = append(issues, fmt.Sprintf("font_family=%q (must be %s)", family, strings.Join(allowedFontFamilies, " or ")))
		}
	} else {
		issues = append(issues, "font_family not specified")
	}

	if raw, ok := metadata["font_size"]; ok && raw != nil {
		size, valid := toFloat(raw)
		switch {
		case !valid:
			issues = append(issues, fmt.Sprintf("font_size=%v (invalid value)", raw))
		case size < minFontSize || size > maxFontSize:
			issues = append(issues, fmt.Sprintf("font_size=%g (must be between %g and %g)", size, minFontSize, maxFontSize))
		}
	} else {
		issues = append(issues, "font_size not specified")
	}

	if len(issues) == 0 {
		return nil
	}
	f := ruleFinding(a.ID(), rule, "FONT", formatCategory, strings.Join(issues, ", "), "", nil)
	return []types.Finding{f}
}

// checkLineSpacing validates line_spacing against the accepted range around
// double spacing.
func (a *FormatAgent) checkLineSpacing(rule rules.Rule, metadata map[string]any) []types.Finding {
	raw, ok := metadata["line_spacing"]
	if !ok || raw == nil {
		f := ruleFinding(a.ID(), rule, "SPACING", formatCategory, "line_spacing not specified", "", nil)
		return []types.Finding{f}
	}

	spacing, valid := toFloat(raw)
	if !valid {
		f := ruleFinding(a.ID(), rule, "SPACING", formatCategory,
			fmt.Sprintf("line_spacing=%v (invalid value)", raw), "", nil)
		return []types.Finding{f}
	}
	if spacing < minLineSpacing || spacing > maxLineSpacing {
		f := ruleFinding(a.ID(), rule, "SPACING", formatCategory,
			fmt.Sprintf("line_spacing=%g (must be between %g and %g)", spacing, minLineSpacing, maxLineSpacing), "", nil)
		return []types.Finding{f}
	}
	return nil
}

// checkMargins validates the four page margins. Issues across margins
// aggregate into one finding.
func (a *FormatAgent) checkMargins(rule rules.Rule, metadata map[string]any) []types.Finding {
	raw, ok := metadata["page_margins"]
	if !ok || raw == nil {
		f := ruleFinding(a.ID(), rule, "MARGINS", formatCategory, "page_margins not specified", "", nil)
		return []types.Finding{f}
	}

	margins, ok := raw.(map[string]any)
	if !ok {
		f := ruleFinding(a.ID(), rule, "MARGINS", formatCategory,
			fmt.Sprintf("page_margins must be an object, got %T", raw), "", nil)
		return []types.Finding{f}
	}

	var issues []string
	for _, key := range []string{"top_cm", "bottom_cm", "left_cm", "right_cm"} {
		value, present := margins[key]
		if !present || value == nil {
			issues = append(issues, key+" not specified")
			continue
		}
		margin, valid := toFloat(value)
		switch {
		case !valid:
			issues = append(issues, fmt.Sprintf("%s=%v (invalid value)", key, value))
		case margin < minMarginCM || margin > maxMarginCM:
			issues = append(issues, fmt.Sprintf("%s=%gcm (must be between %g and %g)", key, margin, minMarginCM, maxMarginCM))
		}
	}

	if len(issues) == 0 {
		return nil
	}
	f := ruleFinding(a.ID(), rule, "MARGINS", formatCategory, strings.Join(issues, ", "), "", nil)
	return []types.Finding{f}
}

// toFloat coerces the loosely typed metadata values that arrive from JSON.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
