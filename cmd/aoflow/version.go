package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/aoflow"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of aoflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "aoflow version %s\n", strings.TrimSpace(aoflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
