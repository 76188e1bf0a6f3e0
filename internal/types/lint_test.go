package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcastillo/apa7-lint/internal/rules"
)

func TestDefaultContext(t *testing.T) {
	ctx := DefaultContext()

	assert.Equal(t, "APA7", ctx.Style)
	assert.Equal(t, "CUN", ctx.Institution)
	assert.Equal(t, "es", ctx.Language)
	assert.Empty(t, ctx.DocumentType)
}

func TestSummarize(t *testing.T) {
	findings := []Finding{
		{Severity: rules.SeverityError},
		{Severity: rules.SeverityError},
		{Severity: rules.SeverityWarning},
		{Severity: rules.SeveritySuggestion},
		{Severity: "unrecognized"}, // anything else counts as a suggestion
	}

	summary := Summarize(findings)
	assert.Equal(t, Summary{ErrorCount: 2, WarningCount: 1, SuggestionCount: 2}, summary)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestLintRequestValidate(t *testing.T) {
	req := LintRequest{DocumentText: "texto", Context: DefaultContext()}
	require.NoError(t, req.Validate())

	req.Context.Language = "fr"
	assert.Error(t, req.Validate())

	req.Context.Language = "en"
	req.Context.ProfileVariant = "apa7_global"
	require.NoError(t, req.Validate())

	req.Context.ProfileVariant = "apa7_everything"
	assert.Error(t, req.Validate())
}
