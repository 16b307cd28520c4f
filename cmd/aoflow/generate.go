package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate <node-id>",
	Short: "Print the Lua fragment of a node",
	Long: `Generates the code of one node, with every node nested in it or chained
after it, wrapped in -- [start:<id>] / -- [end:<id>] markers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("override")
		var override map[string]any
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &override); err != nil {
				return fmt.Errorf("invalid --override: %w", err)
			}
		}

		return withApp(nil, func(a *app) error {
			code, err := a.compiler.GenerateCode(cmd.Context(), args[0], override)
			if err != nil {
				return err
			}
			return printCode(cmd, args[0], code)
		})
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("override", "", "JSON object replacing the stored node data")
	generateCmd.Flags().Bool("pretty", false, "render highlighted code when stdout is a terminal")
}
