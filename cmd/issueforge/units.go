package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/issueforge/internal/orchestrator"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List the discovered units and their execution order",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		orch, err := orchestrator.New(cfg)
		if err != nil {
			return err
		}

		names := orch.UnitNames()
		if len(names) == 0 {
			fmt.Printf("No units found in %s\n", cfg.UnitsDir())
			return nil
		}

		order := make(map[string]int, len(orch.ExecutionOrder()))
		for i, name := range orch.ExecutionOrder() {
			order[name] = i + 1
		}

		fmt.Printf("Units in %s:\n", color.CyanString(cfg.UnitsDir()))
		for _, name := range names {
			if pos, ok := order[name]; ok {
				fmt.Printf("  %s %s (runs %d/%d)\n", color.GreenString("•"), name, pos, len(order))
			} else {
				fmt.Printf("  %s %s (not in execution_order)\n", color.YellowString("•"), name)
			}
		}
		return nil
	},
}
