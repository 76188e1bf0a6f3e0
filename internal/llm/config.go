// Package llm provides the LLM client abstraction and the runner that
// evaluates llm_semantic rules against document text.
package llm

import (
	"os"
	"strconv"
	"time"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider, currently the only one.
const ProviderGemini Provider = "gemini"

// DefaultModel is used when LLM_MODEL is not set.
const DefaultModel = "gemini-2.5-flash"

// DefaultTimeout bounds each rule evaluation call.
const DefaultTimeout = 30 * time.Second

// Config holds the model configuration for semantic rule evaluation.
type Config struct {
	Enabled  bool
	Provider Provider
	Model    string
	Timeout  time.Duration
}

// DefaultConfig returns the default configuration (currently Gemini).
func DefaultConfig() *Config {
	return &Config{
		Enabled:  false,
		Provider: ProviderGemini,
		Model:    DefaultModel,
		Timeout:  DefaultTimeout,
	}
}

// ConfigFromEnv builds the configuration from environment variables:
// LLM_ENABLED, LLM_MODEL and LLM_TIMEOUT (seconds). Unset or invalid values
// fall back to the defaults.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if enabled, err := strconv.ParseBool(os.Getenv("LLM_ENABLED")); err == nil {
		cfg.Enabled = enabled
	}
	if model := os.Getenv("LLM_MODEL"); model != "" {
		cfg.Model = model
	}
	if raw := os.Getenv("LLM_TIMEOUT"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			cfg.Timeout = time.Duration(secs) * time.Second
		}
	}
	return cfg
}

// WithModel returns a copy of the config using a specific model.
func (c *Config) WithModel(model string) *Config {
	out := *c
	out.Model = model
	return &out
}
