package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo/apa7-lint/internal/types"
)

const spanishResearchText = `INTRODUCCIÓN
El presente trabajo analiza la metodología empleada en los estudios de la región
y presenta los resultados obtenidos para discutir las conclusiones principales.`

func TestProfileAgentInfersSpanish(t *testing.T) {
	agent := NewProfileAgent(libWith(t, AgentIDProfile))

	lintCtx := types.DefaultContext()
	lintCtx.DocumentType = "informe_investigacion"

	profile, findings, err := agent.Infer(context.Background(), spanishResearchText, lintCtx)
	require.NoError(t, err)

	assert.Equal(t, "es", profile.Language)
	assert.Equal(t, "informe_investigacion", profile.InferredType)
	assert.Equal(t, "APA7", profile.Style)
	assert.Equal(t, "CUN", profile.Institution)
	assert.Contains(t, profile.RawTags, "has_method_section")
	assert.Contains(t, profile.RawTags, "has_results_section")
	assert.Contains(t, profile.RawTags, "has_conclusions_section")
	// Declared type, structural tags and matching language all add confidence.
	assert.InDelta(t, 1.0, profile.Confidence, 0.001)
	assert.Empty(t, findings)
}

func TestProfileAgentLanguageMismatchWarning(t *testing.T) {
	agent := NewProfileAgent(libWith(t, AgentIDProfile))

	lintCtx := types.DefaultContext()
	lintCtx.Language = "en"

	profile, findings, err := agent.Infer(context.Background(), spanishResearchText, lintCtx)
	require.NoError(t, err)

	assert.Equal(t, "es", profile.Language)
	require.Len(t, findings, 1)
	assert.Equal(t, "DOCUMENTPROFILE:LANG-MISMATCH", findings[0].ID)
	assert.Equal(t, "document_profile", findings[0].Category)
}

func TestProfileAgentEmptyTextFallsBackToDeclaredLanguage(t *testing.T) {
	agent := NewProfileAgent(libWith(t, AgentIDProfile))

	lintCtx := types.DefaultContext()
	lintCtx.Language = "en"

	profile, findings, err := agent.Infer(context.Background(), "", lintCtx)
	require.NoError(t, err)

	assert.Equal(t, "en", profile.Language)
	assert.Empty(t, findings)
}
