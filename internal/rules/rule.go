// Package rules provides the compliance rule data model and the in-memory
// rule library loaded from *.rules.json definition files.
package rules

// Severity is the level assigned to a rule and to findings produced from it.
type Severity string

// Severity levels, ordered error > warning > suggestion.
const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// CheckType describes the detection strategy a rule requires.
type CheckType string

// Supported check types.
const (
	CheckRegex       CheckType = "regex"
	CheckStructural  CheckType = "structural"
	CheckSemantic    CheckType = "semantic"
	CheckLLMSemantic CheckType = "llm_semantic"
)

// DetectionScope is the portion of the document a rule's hints apply to.
type DetectionScope string

// Supported detection scopes.
const (
	ScopeDocument DetectionScope = "document"
	ScopeSection  DetectionScope = "section"
	ScopeLine     DetectionScope = "line"
	ScopeBlock    DetectionScope = "block"
)

// Source is the normative origin of a rule.
type Source string

// Rule sources. MIXED rules apply under both global and institutional variants.
const (
	SourceAPA7  Source = "APA7"
	SourceLocal Source = "LOCAL"
	SourceMixed Source = "MIXED"
)

// Profile variants select which rule sources apply to a request.
const (
	VariantGlobal        = "apa7_global"
	VariantInstitutional = "apa7_institutional"
	VariantBoth          = "apa7_both"
)

// Examples holds a correct and an incorrect application of a rule.
type Examples struct {
	Good string `json:"good"`
	Bad  string `json:"bad"`
}

// DetectionHints tells the engine how to locate a rule's condition in the text.
type DetectionHints struct {
	Scope          DetectionScope `json:"scope"`
	SectionTargets []string       `json:"sectionTargets,omitempty"`
	Regex          []string       `json:"regex,omitempty"`
	Notes          string         `json:"notes,omitempty"`
}

// LLMCheckMode is the evaluation mode for llm_semantic rules.
type LLMCheckMode string

// LLM evaluation modes.
const (
	LLMModeValidator  LLMCheckMode = "validator"
	LLMModeClassifier LLMCheckMode = "classifier"
	LLMModeSuggester  LLMCheckMode = "suggester"
	LLMModeGenerator  LLMCheckMode = "generator"
)

// LLMConfig configures evaluation of a rule with checkType "llm_semantic".
type LLMConfig struct {
	Enabled                bool         `json:"enabled"`
	Mode                   LLMCheckMode `json:"mode,omitempty"`
	PromptTemplateID       string       `json:"promptTemplateId,omitempty"`
	MaxChars               int          `json:"maxChars,omitempty"`
	ForbiddenBehaviors     []string     `json:"forbiddenBehaviors,omitempty"`
	AllowedSuggestionTypes []string     `json:"allowedSuggestionTypes,omitempty"`
	OutputFormat           string       `json:"outputFormat,omitempty"`
}

// DefaultLLMMaxChars bounds how much document text is sent to the LLM when a
// rule does not set its own limit.
const DefaultLLMMaxChars = 4000

// Rule is one externally authored compliance check. Rules are immutable after load.
type Rule struct {
	RuleID         string         `json:"ruleId"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Source         Source         `json:"source"`
	BaseStandard   string         `json:"baseStandard"`
	APAReference   string         `json:"apaReference,omitempty"`
	LocalReference string         `json:"localReference,omitempty"`
	Severity       Severity       `json:"severity"`
	CheckType      CheckType      `json:"checkType"`
	Examples       Examples       `json:"examples"`
	DetectionHints DetectionHints `json:"detectionHints"`
	AutoFixHint    string         `json:"autoFixHint,omitempty"`
	LLMConfig      *LLMConfig     `json:"llmConfig,omitempty"`
}

// RuleFile is one rule definition file: the ordered rule set for a
// (profile, agent) pair.
type RuleFile struct {
	ProfileID string `json:"profileId"`
	AgentID   string `json:"agentId"`
	Rules     []Rule `json:"rules"`
}
