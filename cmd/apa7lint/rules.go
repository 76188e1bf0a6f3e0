package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dcastillo/apa7-lint/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules loaded for a profile",
	Long:  `Loads the rule library and prints every rule per agent, plus the load diagnostics.`,
	RunE:  runRules,
}

var (
	rulesConfigPath string
	rulesDir        string
	rulesProfileID  string
	rulesVariant    string
	rulesAgent      string
	rulesJSON       bool
)

func init() {
	rulesCmd.Flags().StringVar(&rulesConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rulesCmd.Flags().StringVar(&rulesDir, "rules-dir", "", "Directory holding <profile>/*.rules.json files")
	rulesCmd.Flags().StringVar(&rulesProfileID, "profile", "", "Rule profile to load (default apa7_cun)")
	rulesCmd.Flags().StringVar(&rulesVariant, "variant", "", "Filter by profile variant: apa7_global, apa7_institutional or apa7_both")
	rulesCmd.Flags().StringVar(&rulesAgent, "agent", "", "Show only rules for this agent id")
	rulesCmd.Flags().BoolVar(&rulesJSON, "json", false, "Print the full rule set as JSON")

	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cmd, rulesConfigPath, rulesDir, rulesProfileID)
	if err != nil {
		return err
	}

	lib, err := rules.NewLibrary(cfg.RulesDir, cfg.ProfileID)
	if err != nil {
		return fmt.Errorf("failed to load rule library: %w", err)
	}

	agentIDs := lib.AgentIDs()
	if rulesAgent != "" {
		agentIDs = []string{rulesAgent}
	}

	byAgent := make(map[string][]rules.Rule)
	for _, agentID := range agentIDs {
		byAgent[agentID] = lib.RulesFor(agentID, rulesVariant)
	}

	if rulesJSON {
		out := struct {
			ProfileID   string                  `json:"profile_id"`
			Agents      map[string][]rules.Rule `json:"agents"`
			Diagnostics rules.Diagnostics       `json:"diagnostics"`
		}{cfg.ProfileID, byAgent, lib.Diagnostics()}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	diag := lib.Diagnostics()
	fmt.Printf("Profile: %s (%d rules, %d files loaded)\n", cfg.ProfileID, diag.RuleCount, len(diag.LoadedFiles))
	for _, skipped := range diag.SkippedFiles {
		fmt.Printf("  skipped: %s\n", skipped)
	}
	for _, dup := range diag.DuplicateRules {
		fmt.Printf("  duplicate rule id: %s\n", dup)
	}

	for _, agentID := range agentIDs {
		agentRules := byAgent[agentID]
		fmt.Printf("\n%s (%d rules)\n", agentID, len(agentRules))
		for _, rule := range agentRules {
			fmt.Printf("  %-14s [%s] %s\n", rule.RuleID, rule.Severity, rule.Title)
		}
	}
	return nil
}
