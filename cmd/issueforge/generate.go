package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/issueforge/internal/config"
	"github.com/dusk-indust/issueforge/internal/contextstore"
	"github.com/dusk-indust/issueforge/internal/llm"
	"github.com/dusk-indust/issueforge/internal/orchestrator"
	"github.com/dusk-indust/issueforge/internal/template"
	"github.com/dusk-indust/issueforge/internal/unit"
)

var (
	generateProvider    string
	generateTemperature float64
	generateTemplate    string
	generateDryRun      bool
	generateOffline     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [feature description]",
	Short: "Run the unit pipeline for a feature description",
	Long: `Run the configured unit pipeline for a free-text feature description.

The pipeline analyzes the project, researches the feature, and writes a
structured issue specification under generated-issues/. With --dry-run the
populated meta-prompt is printed instead of calling the LLM.

Examples:
  issueforge generate "implement user authentication system"
  issueforge generate --template ui "add real-time dashboard updates"
  issueforge generate --provider claude "implement caching layer"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateProvider, "provider", "", "override the LLM provider (gemini, claude)")
	generateCmd.Flags().Float64Var(&generateTemperature, "temperature", -1, "override the LLM sampling temperature")
	generateCmd.Flags().StringVar(&generateTemplate, "template", "", "feature template type (ui, api, data, perf)")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "print the populated prompt without calling the LLM")
	generateCmd.Flags().BoolVar(&generateOffline, "offline", false, "run the full pipeline with prompts echoed instead of LLM calls")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	feature := strings.TrimSpace(strings.Join(args, " "))
	if feature == "" {
		return fmt.Errorf("no feature description provided")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyOverrides(cfg)

	if generateDryRun {
		return printDryRunPrompt(cfg, feature)
	}

	fmt.Printf("Generating issue for: %s\n", color.CyanString(feature))

	var opts []orchestrator.Option
	if generateOffline {
		opts = append(opts, orchestrator.WithInvoker(llm.Dry{}))
	}
	orch, err := orchestrator.New(cfg, opts...)
	if err != nil {
		return err
	}

	result, err := orch.RunSequence(cmd.Context(), feature)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s pipeline completed\n", color.GreenString("✓"))
	printResultSummary(orch.Context(), result)
	return nil
}

// applyOverrides writes the CLI flag overrides into the configuration tree,
// where they take effect as the global llm_settings tier.
func applyOverrides(cfg *config.Store) {
	if generateProvider != "" {
		cfg.Set("llm_settings.default_provider", generateProvider)
	}
	if generateTemperature >= 0 {
		cfg.Set("llm_settings.temperature", generateTemperature)
	}
	if generateTemplate != "" {
		key := "templates." + generateTemplate + "_feature"
		if extra := cfg.GetString(key, ""); extra != "" {
			constraints := cfg.GetString("project.constraints", "")
			cfg.Set("project.constraints", constraints+"\n\nTEMPLATE-SPECIFIC CONTEXT: "+extra)
		}
	}
}

// printDryRunPrompt shows the meta-prompt the issue generator would send.
func printDryRunPrompt(cfg *config.Store, feature string) error {
	root := cfg.GetString("project.root", "")
	var dirs []string
	for _, dir := range cfg.GetStringSlice("templates.directories") {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, dir)
		}
		dirs = append(dirs, dir)
	}

	deps := unit.Deps{
		Config:    config.NewView(cfg, "issue-generator"),
		Templates: template.NewLoader(dirs),
	}
	gen, ok := unit.NewIssueGenerator(deps).(*unit.IssueGenerator)
	if !ok {
		return fmt.Errorf("issue generator unavailable")
	}
	prompt, err := gen.BuildPrompt(feature)
	if err != nil {
		return err
	}

	fmt.Println("=== GENERATED PROMPT (DRY RUN) ===")
	fmt.Println(prompt)
	fmt.Println("==================================")
	return nil
}

// printResultSummary shows where the specification landed and its first
// lines.
func printResultSummary(store *contextstore.Store, result string) {
	path, _ := store.Get(unit.KeyGeneratedIssuePath, store.Get(unit.KeyOutputFilePath, "")).(string)
	if path != "" {
		fmt.Printf("Specification: %s\n", color.CyanString(path))
	}
	if url, ok := store.Get(unit.KeyGitHubIssueURL, "").(string); ok && url != "" {
		fmt.Printf("GitHub issue: %s\n", color.CyanString(url))
	}

	lines := strings.Split(result, "\n")
	if len(lines) > 20 {
		lines = append(lines[:20], "...")
	}
	fmt.Println("\n=== RESULT ===")
	fmt.Println(strings.Join(lines, "\n"))
	fmt.Println("==============")
}
