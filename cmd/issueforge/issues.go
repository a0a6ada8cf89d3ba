package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/issueforge/internal/status"
	"github.com/dusk-indust/issueforge/internal/unit"
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List the generated issue specifications",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dir := filepath.Join(cfg.GetString("project.root", "."), unit.OutputDirName)
		specs, err := status.ListSpecs(dir)
		if err != nil {
			return err
		}
		if len(specs) == 0 {
			fmt.Printf("No specifications in %s yet. Run %s to create one.\n",
				dir, color.CyanString("issueforge generate"))
			return nil
		}

		fmt.Printf("Specifications in %s:\n", color.CyanString(dir))
		for _, spec := range specs {
			title := spec.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("  %s %s  %s\n", spec.ModTime.Format("2006-01-02 15:04"), spec.Name, title)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(issuesCmd)
}
