package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dcastillo/apa7-lint/internal/agents"
	"github.com/dcastillo/apa7-lint/internal/config"
	"github.com/dcastillo/apa7-lint/internal/llm"
	"github.com/dcastillo/apa7-lint/internal/observability"
	"github.com/dcastillo/apa7-lint/internal/orchestrator"
	"github.com/dcastillo/apa7-lint/internal/policy"
	"github.com/dcastillo/apa7-lint/internal/review"
	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

var lintCmd = &cobra.Command{
	Use:   "lint [file]",
	Short: "Analyze a document against the loaded rule profile",
	Long: `Runs the full analysis pipeline over the document in [file] (or stdin when omitted):
profile inference, the rule agents, the policy compliance score and the critical review.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLintCmd,
}

var (
	lintConfigPath  string
	lintRulesDir    string
	lintProfileID   string
	lintVariant     string
	lintDocType     string
	lintInstitution string
	lintLanguage    string
	lintAgents      []string
	lintReview      bool
	lintVerbose     bool
)

func init() {
	lintCmd.Flags().StringVar(&lintConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	lintCmd.Flags().StringVar(&lintRulesDir, "rules-dir", "", "Directory holding <profile>/*.rules.json files")
	lintCmd.Flags().StringVar(&lintProfileID, "profile", "", "Rule profile to load (default apa7_cun)")
	lintCmd.Flags().StringVar(&lintVariant, "variant", "", "Profile variant: apa7_global, apa7_institutional or apa7_both")
	lintCmd.Flags().StringVar(&lintDocType, "doc-type", "", "Declared document type (e.g. ensayo, articulo_cientifico)")
	lintCmd.Flags().StringVar(&lintInstitution, "institution", "", "Declared institution (default CUN)")
	lintCmd.Flags().StringVar(&lintLanguage, "language", "", "Declared language: es or en (default es)")
	lintCmd.Flags().StringSliceVar(&lintAgents, "agents", nil, "Run only these agent ids (default: full roster)")
	lintCmd.Flags().BoolVar(&lintReview, "review", false, "Include the compliance score and critical review in the output")
	lintCmd.Flags().BoolVarP(&lintVerbose, "verbose", "v", false, "Print formatted summaries instead of raw JSON")

	rootCmd.AddCommand(lintCmd)
}

func runLintCmd(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, lintConfigPath, lintRulesDir, lintProfileID)
	if err != nil {
		return err
	}

	text, err := readDocument(args)
	if err != nil {
		return err
	}

	lib, err := rules.NewLibrary(cfg.RulesDir, cfg.ProfileID)
	if err != nil {
		return fmt.Errorf("failed to load rule library: %w", err)
	}

	ctx := context.Background()
	runner, closeLLM := buildRuleRunner(ctx)
	if closeLLM != nil {
		defer closeLLM()
	}

	orch := orchestrator.New(lib, runner)

	lintCtx := types.DefaultContext()
	if lintDocType != "" {
		lintCtx.DocumentType = lintDocType
	}
	if lintInstitution != "" {
		lintCtx.Institution = lintInstitution
	}
	if lintLanguage != "" {
		lintCtx.Language = lintLanguage
	}
	if lintVariant != "" {
		lintCtx.ProfileVariant = lintVariant
	}

	report, err := orch.Run(ctx, types.LintRequest{
		DocumentText: text,
		Context:      lintCtx,
		Agents:       lintAgents,
	})
	if err != nil {
		return fmt.Errorf("lint failed: %w", err)
	}

	if !lintReview {
		return printOutput(report, func(p *observability.Printer) {
			p.PrintProfile(report.Profile)
			p.PrintReport(report)
		})
	}

	compliance := policy.NewScorer().Score(lintCtx, report.Profile, report.Findings)
	summary := review.NewSynthesizer().Synthesize(report.Profile, report.Findings, &compliance)

	out := struct {
		types.Report
		PolicyCompliance types.PolicyComplianceSummary `json:"policy_compliance"`
		CriticalReview   types.CriticalReviewSummary   `json:"critical_review"`
	}{report, compliance, summary}

	return printOutput(out, func(p *observability.Printer) {
		p.PrintProfile(report.Profile)
		p.PrintReport(report)
		p.PrintCompliance(compliance)
		p.PrintReview(summary)
	})
}

// resolveConfig merges config file, environment and flags, flags winning.
func resolveConfig(cmd *cobra.Command, path, rulesDir, profileID string) (config.Config, error) {
	cfg := *config.FromEnv()

	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = cfg.MergeWithDefaults(*loaded)
	}

	if cmd.Flags().Changed("rules-dir") {
		cfg.RulesDir = rulesDir
	}
	if cmd.Flags().Changed("profile") {
		cfg.ProfileID = profileID
	}

	cfg = cfg.WithFallbacks()
	return cfg, nil
}

// readDocument reads the document text from the file argument or stdin.
func readDocument(args []string) (string, error) {
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read document: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read document from stdin: %w", err)
	}
	return string(data), nil
}

// buildRuleRunner creates the llm_semantic rule runner when the LLM is
// enabled and an API key is available. The second return closes the client.
func buildRuleRunner(ctx context.Context) (agents.LLMRuleRunner, func()) {
	llmCfg := llm.ConfigFromEnv()
	if !llmCfg.Enabled {
		return nil, nil
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Warning: LLM_ENABLED is set but GEMINI_API_KEY is missing; llm_semantic rules will be skipped")
		return nil, nil
	}

	client, err := llm.NewClient(ctx, llmCfg, apiKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: LLM client unavailable (%v); llm_semantic rules will be skipped\n", err)
		return nil, nil
	}
	return llm.NewRuleRunner(client), func() { _ = client.Close() }
}

// printOutput emits JSON by default, or formatted boxes in verbose mode.
func printOutput(payload any, verbose func(*observability.Printer)) error {
	if lintVerbose {
		verbose(observability.NewPrinter(os.Stdout))
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
