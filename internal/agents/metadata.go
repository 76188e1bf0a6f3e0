package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// AgentIDMetadata identifies the metadata consistency agent.
const AgentIDMetadata = "METADATACONSISTENCY"

// metadataCategory is the finding category emitted by this agent.
const metadataCategory = "metadata"

// metadataCheck evaluates one metadata rule.
type metadataCheck func(rule rules.Rule, lowerText string, lintCtx types.Context, profile types.Profile) []types.Finding

// MetadataAgent checks the coherence between the declared context, the
// inferred profile and the document body. Each check is a no-op when either
// side of its comparison is absent.
type MetadataAgent struct {
	lib      *rules.Library
	handlers map[string]metadataCheck
}

// NewMetadataAgent creates the metadata consistency agent with its rule-id
// handler table.
func NewMetadataAgent(lib *rules.Library) *MetadataAgent {
	a := &MetadataAgent{lib: lib}
	a.handlers = map[string]metadataCheck{
		"CUN-MD-001": a.checkDocumentType,
		"CUN-MD-002": a.checkInstitutionPresence,
		"CUN-MD-003": a.checkLanguage,
	}
	return a
}

// ID returns the agent identifier.
func (a *MetadataAgent) ID() string { return AgentIDMetadata }

// Evaluate runs the metadata consistency checks.
func (a *MetadataAgent) Evaluate(_ context.Context, text string, lintCtx types.Context, profile types.Profile) ([]types.Finding, error) {
	lowerText := strings.ToLower(text)

	var findings []types.Finding
	for _, rule := range a.lib.RulesFor(a.ID(), lintCtx.ProfileVariant) {
		handler, ok := a.handlers[rule.RuleID]
		if !ok {
			continue
		}
		findings = append(findings, handler(rule, lowerText, lintCtx, profile)...)
	}
	return findings, nil
}

// checkDocumentType compares the declared document type against the inferred one.
func (a *MetadataAgent) checkDocumentType(rule rules.Rule, _ string, lintCtx types.Context, profile types.Profile) []types.Finding {
	if lintCtx.DocumentType == "" || profile.InferredType == "" {
		return nil
	}
	if lintCtx.DocumentType == profile.InferredType {
		return nil
	}

	f := ruleFinding(a.ID(), rule, "DOC_TYPE_MISMATCH", metadataCategory,
		fmt.Sprintf("document_type in context='%s', document_type inferred in profile='%s'.",
			lintCtx.DocumentType, profile.InferredType),
		"", nil)
	return []types.Finding{f}
}

// checkInstitutionPresence verifies the declared institution name appears in
// the document body, case-insensitively.
func (a *MetadataAgent) checkInstitutionPresence(rule rules.Rule, lowerText string, lintCtx types.Context, _ types.Profile) []types.Finding {
	institution := strings.TrimSpace(lintCtx.Institution)
	if institution == "" {
		return nil
	}
	if strings.Contains(lowerText, strings.ToLower(institution)) {
		return nil
	}

	f := ruleFinding(a.ID(), rule, "INSTITUTION_MISSING", metadataCategory,
		fmt.Sprintf("The institution name declared in the context ('%s') was not found in the document text.", institution),
		snippetOf(lowerText, 300), nil)
	return []types.Finding{f}
}

// checkLanguage compares the declared language against the inferred one.
func (a *MetadataAgent) checkLanguage(rule rules.Rule, _ string, lintCtx types.Context, profile types.Profile) []types.Finding {
	if lintCtx.Language == "" || profile.Language == "" {
		return nil
	}
	if lintCtx.Language == profile.Language {
		return nil
	}

	f := ruleFinding(a.ID(), rule, "LANGUAGE_MISMATCH", metadataCategory,
		fmt.Sprintf("language in context='%s', language inferred in profile='%s'.",
			lintCtx.Language, profile.Language),
		"", nil)
	return []types.Finding{f}
}
