package rules

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed rule_file.schema.json
var ruleFileSchema string

// SchemaError reports why a rule definition file failed schema validation.
type SchemaError struct {
	Path   string
	Issues []string
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "rule file %s failed schema validation:\n", e.Path)
	for i, issue := range e.Issues {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, issue)
	}
	return sb.String()
}

// validateRuleFile checks raw rule-file JSON against the embedded RuleFile schema.
func validateRuleFile(path string, data []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(ruleFileSchema)
	docLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("failed to validate rule file %s: %w", path, err)
	}

	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	return &SchemaError{Path: path, Issues: issues}
}
