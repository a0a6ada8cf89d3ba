package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/issueforge/internal/config"
)

// DefaultConfigFile is the project configuration looked for in the working
// directory when --config is not given.
const DefaultConfigFile = "dev-automation.config.json"

// version is set by the linker at build time.
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "issueforge",
	Short: "Turn feature descriptions into GitHub-ready issue specifications",
	Long: `issueforge runs a pipeline of processing units over a free-text feature
description: it analyzes the project, researches the feature, and writes a
structured issue specification to the generated-issues directory, optionally
publishing it as a GitHub issue.

Units live in the configured units directory (default: agents/), each with a
manifest.json naming the implementation to run. The pipeline order comes
from the execution_order configuration key.

Examples:
  issueforge init
  issueforge generate "implement user authentication system"
  issueforge generate --provider claude "add real-time dashboard updates"
  issueforge generate --dry-run "optimize tournament data sync"
  issueforge units
  issueforge serve-mcp --addr :8080`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the configuration file (default: ./"+DefaultConfigFile+")")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(unitsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfigPath returns the effective configuration file path.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return DefaultConfigFile
}

// loadConfig loads and validates the configuration. A missing file yields
// an empty store with a hint to run init; a malformed or invalid file is an
// error.
func loadConfig() (*config.Store, error) {
	path := resolveConfigPath()
	cfg := config.New()
	if err := cfg.Load(path); err != nil {
		var malformed *config.MalformedError
		if errors.As(err, &malformed) {
			return nil, fmt.Errorf("invalid configuration file %s: %w", path, err)
		}
		return nil, err
	}

	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		fmt.Fprintf(os.Stderr, "%s no configuration at %s, run %s to create one\n",
			color.YellowString("note:"), path, color.CyanString("issueforge init"))
	}

	// Record where the project lives so relative paths resolve consistently.
	if cfg.GetString("project.root", "") == "" {
		if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
			cfg.Set("project.root", abs)
		}
	}
	return cfg, nil
}
