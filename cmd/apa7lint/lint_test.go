package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagCmd(t *testing.T) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().String("rules-dir", "", "")
	cmd.Flags().String("profile", "", "")
	return cmd
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APA7_RULES_DIR", "")
	t.Setenv("APA7_PROFILE_ID", "")
	t.Setenv("PORT", "")
	t.Setenv("APA7_ENVIRONMENT", "")
	t.Setenv("APA7_API_KEYS", "")
	t.Setenv("APA7_CORS_ORIGINS", "")
}

func TestResolveConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := resolveConfig(newFlagCmd(t), "", "", "")
	require.NoError(t, err)

	assert.Equal(t, "rules", cfg.RulesDir)
	assert.Equal(t, "apa7_cun", cfg.ProfileID)
	assert.Equal(t, "8000", cfg.Port)
}

func TestResolveConfigFlagsWin(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APA7_PROFILE_ID", "apa7_env")

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath,
		[]byte(`{"profile_id": "apa7_file", "port": "9000"}`), 0o644))

	cmd := newFlagCmd(t)
	require.NoError(t, cmd.Flags().Set("profile", "apa7_flag"))

	cfg, err := resolveConfig(cmd, configPath, "", "apa7_flag")
	require.NoError(t, err)

	assert.Equal(t, "apa7_flag", cfg.ProfileID)
	// File values still fill what neither flag nor env set.
	assert.Equal(t, "9000", cfg.Port)
}

func TestResolveConfigEnvOverFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("APA7_PROFILE_ID", "apa7_env")

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath,
		[]byte(`{"profile_id": "apa7_file"}`), 0o644))

	cfg, err := resolveConfig(newFlagCmd(t), configPath, "", "")
	require.NoError(t, err)
	assert.Equal(t, "apa7_env", cfg.ProfileID)
}

func TestReadDocumentFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("INTRODUCCIÓN\ntexto"), 0o644))

	text, err := readDocument([]string{path})
	require.NoError(t, err)
	assert.Equal(t, "INTRODUCCIÓN\ntexto", text)
}

func TestReadDocumentMissingFile(t *testing.T) {
	_, err := readDocument([]string{filepath.Join(t.TempDir(), "missing.txt")})
	assert.Error(t, err)
}
