// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the engine configuration. It can be loaded from a JSON
// file, from environment variables, or both; file values act as defaults for
// CLI flags. All fields are optional.
type Config struct {
	// Rules
	RulesDir  string `json:"rules_dir,omitempty"`  // Directory holding <profile>/<agent>.rules.json files
	ProfileID string `json:"profile_id,omitempty"` // Rule profile to load (e.g. "apa7_cun")

	// Server
	Port        string   `json:"port,omitempty"`         // HTTP listen port
	Environment string   `json:"environment,omitempty"`  // "development" or "production"
	APIKeys     []string `json:"api_keys,omitempty"`     // Accepted X-API-Key values; empty means open access
	CORSOrigins []string `json:"cors_origins,omitempty"` // Allowed CORS origins

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed findings on the CLI
}

// Defaults used when neither file, environment nor flags provide a value.
const (
	DefaultRulesDir  = "rules"
	DefaultProfileID = "apa7_cun"
	DefaultPort      = "8000"
)

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a configuration from environment variables:
// APA7_RULES_DIR, APA7_PROFILE_ID, PORT, APA7_ENVIRONMENT, APA7_API_KEYS
// (comma-separated) and APA7_CORS_ORIGINS (comma-separated).
func FromEnv() *Config {
	return &Config{
		RulesDir:    os.Getenv("APA7_RULES_DIR"),
		ProfileID:   os.Getenv("APA7_PROFILE_ID"),
		Port:        os.Getenv("PORT"),
		Environment: os.Getenv("APA7_ENVIRONMENT"),
		APIKeys:     splitList(os.Getenv("APA7_API_KEYS")),
		CORSOrigins: splitList(os.Getenv("APA7_CORS_ORIGINS")),
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Environment != "" && c.Environment != "development" && c.Environment != "production" {
		return fmt.Errorf("config error: 'environment' must be 'development' or 'production'")
	}

	// Validate the rules directory exists (if specified)
	if c.RulesDir != "" {
		if _, err := os.Stat(c.RulesDir); os.IsNotExist(err) {
			return fmt.Errorf("config error: rules directory not found: %s", c.RulesDir)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.RulesDir == "" {
		result.RulesDir = defaults.RulesDir
	}
	if result.ProfileID == "" {
		result.ProfileID = defaults.ProfileID
	}
	if result.Port == "" {
		result.Port = defaults.Port
	}
	if result.Environment == "" {
		result.Environment = defaults.Environment
	}

	// Slice fields: use default if empty
	if len(result.APIKeys) == 0 {
		result.APIKeys = defaults.APIKeys
	}
	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = defaults.CORSOrigins
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// WithFallbacks fills any still-empty fields with the built-in defaults.
func (c *Config) WithFallbacks() Config {
	return c.MergeWithDefaults(Config{
		RulesDir:  DefaultRulesDir,
		ProfileID: DefaultProfileID,
		Port:      DefaultPort,
	})
}

// splitList splits a comma-separated env value, trimming blanks.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
