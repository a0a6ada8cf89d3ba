package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the issueforge version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("issueforge %s\n", version)
	},
}
