package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dcastillo/apa7-lint/internal/orchestrator"
	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the lint, score, review and rule management endpoints.`,
	RunE:  runServe,
}

var (
	serveConfigPath string
	serveRulesDir   string
	serveProfileID  string
	servePort       string
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().StringVar(&serveRulesDir, "rules-dir", "", "Directory holding <profile>/*.rules.json files")
	serveCmd.Flags().StringVar(&serveProfileID, "profile", "", "Rule profile to load (default apa7_cun)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default 8000)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, serveConfigPath, serveRulesDir, serveProfileID)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	cfg = cfg.WithFallbacks()

	lib, err := rules.NewLibrary(cfg.RulesDir, cfg.ProfileID)
	if err != nil {
		return fmt.Errorf("failed to load rule library: %w", err)
	}

	runner, closeLLM := buildRuleRunner(context.Background())
	if closeLLM != nil {
		defer closeLLM()
	}

	srv, err := server.New(cfg, lib, orchestrator.New(lib, runner))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
