package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive setup to create the project configuration",
	Long: `Create the project configuration file through a short interactive
questionnaire: project description, tech stack, GitHub coordinates, and the
default LLM provider.

The file is written to ./` + DefaultConfigFile + ` (or the --config path) and can
be edited afterwards to customize templates and automation settings.`,
	RunE: runInitConfig,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")
}

func runInitConfig(cmd *cobra.Command, _ []string) error {
	path := resolveConfigPath()
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", path)
	}

	fmt.Println("Creating new project configuration...")
	fmt.Println()
	fmt.Println("Please provide the following information about your project:")
	fmt.Println()

	reader := bufio.NewReader(cmd.InOrStdin())
	cfg, err := askProjectConfig(reader)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Printf("\n%s Configuration created at %s\n", color.GreenString("✓"), color.CyanString(path))
	fmt.Println("You can edit this file to customize templates and automation settings")
	return nil
}

func askProjectConfig(reader *bufio.Reader) (map[string]any, error) {
	ask := func(prompt string) (string, error) {
		fmt.Printf("%s: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	prompts := []string{
		"Project name",
		"Project description/context",
		"Tech stack (e.g., Go, PostgreSQL)",
		"Architecture pattern (e.g., microservices, monolith)",
		"Target users",
		"Key constraints (optional)",
		"GitHub repo owner",
		"GitHub repo name",
	}
	answers := make([]string, len(prompts))
	for i, prompt := range prompts {
		v, err := ask(prompt)
		if err != nil {
			return nil, err
		}
		answers[i] = v
	}
	name, context, techStack, architecture := answers[0], answers[1], answers[2], answers[3]
	targetUsers, constraints, repoOwner, repoName := answers[4], answers[5], answers[6], answers[7]

	fmt.Println()
	fmt.Println("Choose default LLM provider:")
	fmt.Println("1) gemini")
	fmt.Println("2) claude")
	choice, err := ask("Selection (1-2)")
	if err != nil {
		return nil, err
	}
	provider := "gemini"
	if choice == "2" {
		provider = "claude"
	}

	return map[string]any{
		"project": map[string]any{
			"name":         name,
			"context":      context,
			"tech_stack":   techStack,
			"architecture": architecture,
			"target_users": targetUsers,
			"constraints":  constraints,
		},
		"github": map[string]any{
			"repo_owner":      repoOwner,
			"repo_name":       repoName,
			"default_project": "",
			"default_labels":  []string{"auto-generated", "needs-review"},
		},
		"llm_settings": map[string]any{
			"default_provider": provider,
			"output_format":    "structured",
			"research_depth":   "standard",
			"temperature":      0.7,
		},
		"templates": map[string]any{},
		"automation": map[string]any{
			"auto_create_issues": false,
			"auto_assign":        false,
		},
	}, nil
}
