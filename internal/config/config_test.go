package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_ValidJSON(t *testing.T) {
	path := writeConfigFile(t, `{
		"rules_dir": "rules",
		"profile_id": "apa7_cun",
		"port": "9000",
		"environment": "development",
		"api_keys": ["k1", "k2"],
		"cors_origins": ["http://localhost:3000"]
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "rules", cfg.RulesDir)
	assert.Equal(t, "apa7_cun", cfg.ProfileID)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, []string{"k1", "k2"}, cfg.APIKeys)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := writeConfigFile(t, `{not json`)
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("APA7_RULES_DIR", "/srv/rules")
	t.Setenv("APA7_PROFILE_ID", "apa7_cun")
	t.Setenv("PORT", "8080")
	t.Setenv("APA7_ENVIRONMENT", "production")
	t.Setenv("APA7_API_KEYS", "alpha, beta ,,gamma")
	t.Setenv("APA7_CORS_ORIGINS", "https://example.edu")

	cfg := FromEnv()

	assert.Equal(t, "/srv/rules", cfg.RulesDir)
	assert.Equal(t, "apa7_cun", cfg.ProfileID)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, cfg.APIKeys)
	assert.Equal(t, []string{"https://example.edu"}, cfg.CORSOrigins)
}

func TestFromEnv_Empty(t *testing.T) {
	t.Setenv("APA7_API_KEYS", "")
	t.Setenv("APA7_CORS_ORIGINS", "")

	cfg := FromEnv()

	assert.Nil(t, cfg.APIKeys)
	assert.Nil(t, cfg.CORSOrigins)
}

func TestValidate_Environment(t *testing.T) {
	cfg := &Config{Environment: "staging"}
	assert.Error(t, cfg.Validate())

	cfg.Environment = "production"
	assert.NoError(t, cfg.Validate())

	cfg.Environment = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RulesDir(t *testing.T) {
	cfg := &Config{RulesDir: filepath.Join(t.TempDir(), "absent")}
	assert.Error(t, cfg.Validate())

	cfg.RulesDir = t.TempDir()
	assert.NoError(t, cfg.Validate())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := Config{Port: "9999"}
	merged := cfg.MergeWithDefaults(Config{
		RulesDir:  "rules",
		ProfileID: "apa7_cun",
		Port:      "8000",
		APIKeys:   []string{"k"},
	})

	// Explicit values win over defaults
	assert.Equal(t, "9999", merged.Port)
	assert.Equal(t, "rules", merged.RulesDir)
	assert.Equal(t, "apa7_cun", merged.ProfileID)
	assert.Equal(t, []string{"k"}, merged.APIKeys)
}

func TestWithFallbacks(t *testing.T) {
	cfg := &Config{}
	full := cfg.WithFallbacks()

	assert.Equal(t, DefaultRulesDir, full.RulesDir)
	assert.Equal(t, DefaultProfileID, full.ProfileID)
	assert.Equal(t, DefaultPort, full.Port)
}
