package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hukukai/lexcore/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lexctl version %s\n", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
