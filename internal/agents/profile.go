package agents

import (
	"context"
	"fmt"
	"regexp"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// AgentIDProfile identifies the document-profile inference stage.
const AgentIDProfile = "DOCUMENTPROFILE"

// profileSampleSize is how much of the document the language heuristic reads.
const profileSampleSize = 5000

var (
	spanishStopWords = regexp.MustCompile(`(?i)\b(el|la|de|que|y|en|los|las|un|una|para|por)\b`)
	englishStopWords = regexp.MustCompile(`(?i)\b(the|of|and|in|for|to|with|a|an|on)\b`)

	methodTag      = regexp.MustCompile(`(?i)\bmetodolog[ií]a\b`)
	resultsTag     = regexp.MustCompile(`(?i)\bresultados\b`)
	conclusionsTag = regexp.MustCompile(`(?i)\bconclusiones\b`)
)

// ProfileAgent infers the document profile before the rule agents run.
// It is the only stage that returns a profile alongside its findings, so it
// sits outside the Agent interface and is invoked first by the orchestrator.
type ProfileAgent struct {
	lib *rules.Library
}

// NewProfileAgent creates the profile inference stage.
func NewProfileAgent(lib *rules.Library) *ProfileAgent {
	return &ProfileAgent{lib: lib}
}

// ID returns the agent identifier.
func (a *ProfileAgent) ID() string { return AgentIDProfile }

// Infer samples the document, infers the predominant language, carries the
// declared type through, and computes a confidence score. It emits a warning
// finding when the inferred language differs from the declared one.
func (a *ProfileAgent) Infer(_ context.Context, text string, lintCtx types.Context) (types.Profile, []types.Finding, error) {
	sample := snippetOf(text, profileSampleSize)

	esCount := len(spanishStopWords.FindAllString(sample, -1))
	enCount := len(englishStopWords.FindAllString(sample, -1))

	var inferredLang string
	switch {
	case esCount > enCount:
		inferredLang = "es"
	case enCount > esCount:
		inferredLang = "en"
	case lintCtx.Language != "":
		inferredLang = lintCtx.Language
	default:
		inferredLang = "es"
	}

	var tags []string
	if methodTag.MatchString(sample) {
		tags = append(tags, "has_method_section")
	}
	if resultsTag.MatchString(sample) {
		tags = append(tags, "has_results_section")
	}
	if conclusionsTag.MatchString(sample) {
		tags = append(tags, "has_conclusions_section")
	}

	confidence := 0.4
	if lintCtx.DocumentType != "" {
		confidence += 0.3
	}
	if len(tags) > 0 {
		confidence += 0.2
	}
	if inferredLang == lintCtx.Language {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}

	profile := types.Profile{
		InferredType: lintCtx.DocumentType,
		Language:     inferredLang,
		Style:        lintCtx.Style,
		Institution:  lintCtx.Institution,
		Confidence:   confidence,
		RawTags:      tags,
	}

	var findings []types.Finding
	if lintCtx.Language != "" && inferredLang != lintCtx.Language {
		findings = append(findings, types.Finding{
			ID:       fmt.Sprintf("%s:LANG-MISMATCH", a.ID()),
			AgentID:  a.ID(),
			Severity: rules.SeverityWarning,
			Category: "document_profile",
			Message:  "The language detected in the text does not match the language declared in the context.",
			Suggestion: "Check that the document language is consistent, or adjust the declared " +
				"language in the analysis context.",
			Details: fmt.Sprintf("Detected language: %s. Declared language: %s.", inferredLang, lintCtx.Language),
			Snippet: snippetOf(sample, 300),
		})
	}

	return profile, findings, nil
}
