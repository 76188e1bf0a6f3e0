package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// llmFinding is one entry of the JSON findings protocol the model is asked
// to produce.
type llmFinding struct {
	Complies    bool   `json:"complies"`
	Message     string `json:"message"`
	Details     string `json:"details"`
	Snippet     string `json:"snippet"`
	Suggestion  string `json:"suggestion"`
	OffsetStart int    `json:"offset_start"`
	OffsetEnd   int    `json:"offset_end"`
}

// llmResponse is the top-level shape of the model's reply.
type llmResponse struct {
	Findings []llmFinding `json:"findings"`
}

// RuleRunner evaluates llm_semantic rules through a Client. Every failure
// mode (disabled rule, missing client, call error, unparseable reply)
// degrades to zero findings so the calling agent never fails on the LLM's
// account.
type RuleRunner struct {
	client Client
}

// NewRuleRunner creates a runner over the given client. A nil client is
// allowed and turns every evaluation into a no-op.
func NewRuleRunner(client Client) *RuleRunner {
	return &RuleRunner{client: client}
}

// RunRule evaluates one llm_semantic rule against the document text and
// converts compliant-negative replies into findings.
func (r *RuleRunner) RunRule(ctx context.Context, agentID string, rule rules.Rule, text string, _ types.Context, _ types.Profile) ([]types.Finding, error) {
	if rule.LLMConfig == nil || !rule.LLMConfig.Enabled {
		return nil, nil
	}
	if r.client == nil {
		return nil, nil
	}

	maxChars := rule.LLMConfig.MaxChars
	if maxChars <= 0 {
		maxChars = rules.DefaultLLMMaxChars
	}
	excerpt := text
	if runes := []rune(excerpt); len(runes) > maxChars {
		excerpt = string(runes[:maxChars])
	}

	raw, err := r.client.GenerateJSON(ctx, buildRulePrompt(rule, excerpt))
	if err != nil {
		log.Printf("llm rule %s: generation failed: %v", rule.RuleID, err)
		return nil, nil
	}

	var resp llmResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		log.Printf("llm rule %s: response is not valid JSON: %v", rule.RuleID, err)
		return nil, nil
	}

	var findings []types.Finding
	for i, item := range resp.Findings {
		if item.Complies {
			continue
		}
		message := item.Message
		if message == "" {
			message = rule.Description
		}
		start, end := item.OffsetStart, item.OffsetEnd
		findings = append(findings, types.Finding{
			ID:         fmt.Sprintf("%s:%s:LLM_%d", agentID, rule.RuleID, i),
			AgentID:    agentID,
			RuleID:     rule.RuleID,
			Severity:   rule.Severity,
			Category:   "academic_style",
			Message:    message,
			Suggestion: item.Suggestion,
			Details:    item.Details,
			Snippet:    item.Snippet,
			Location:   &types.Location{StartOffset: &start, EndOffset: &end},
		})
	}
	return findings, nil
}

// buildRulePrompt renders the evaluation prompt for one rule. The model is
// instructed to answer only with the JSON findings protocol.
func buildRulePrompt(rule rules.Rule, excerpt string) string {
	var b strings.Builder

	b.WriteString("You are an expert APA7 compliance evaluator.\n")
	fmt.Fprintf(&b, "Your task: evaluate whether the content below complies with rule %s.\n\n", rule.RuleID)
	fmt.Fprintf(&b, "RULE: %s\n", rule.Title)
	fmt.Fprintf(&b, "DESCRIPTION: %s\n", rule.Description)
	fmt.Fprintf(&b, "SEVERITY: %s\n", rule.Severity)

	if len(rule.LLMConfig.ForbiddenBehaviors) > 0 {
		b.WriteString("\nFORBIDDEN BEHAVIORS:\n")
		for _, item := range rule.LLMConfig.ForbiddenBehaviors {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	if len(rule.LLMConfig.AllowedSuggestionTypes) > 0 {
		b.WriteString("\nALLOWED SUGGESTION TYPES:\n")
		for _, item := range rule.LLMConfig.AllowedSuggestionTypes {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}
	if rule.LLMConfig.OutputFormat != "" {
		fmt.Fprintf(&b, "\nRESPONSE FORMAT: %s\n", rule.LLMConfig.OutputFormat)
	}

	b.WriteString(`
Always reply with valid JSON of this exact shape:
{
  "findings": [
    {
      "complies": boolean,
      "message": "string",
      "details": "string",
      "snippet": "string",
      "suggestion": "string",
      "offset_start": number,
      "offset_end": number
    }
  ]
}

CONTENT TO EVALUATE:
`)
	b.WriteString(excerpt)
	b.WriteString("\n")
	return b.String()
}
