package main

import (
	"fmt"

	"github.com/aretw0/aoflow/internal/presentation/tui"
	"github.com/aretw0/aoflow/internal/validator"
	"github.com/aretw0/aoflow/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the graph for consistency",
	Long:  `Checks node ids, edges and node types, then crawls the graph from the root node and reports unreachable nodes.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, _ := cmd.Flags().GetString("root")

		return withApp(nil, func(a *app) error {
			snap, err := a.compiler.Inspect(cmd.Context())
			if err != nil {
				return err
			}
			if root == "" {
				for _, n := range snap.Nodes {
					if n.Type == domain.NodeTypeStart {
						root = n.ID
						break
					}
				}
			}

			report := validator.ValidateGraph(snap, a.compiler.Registry(), root)
			out := cmd.OutOrStdout()
			for _, w := range report.Warnings {
				fmt.Fprintf(out, "Warning: %s\n", w)
			}
			if err := report.Err(); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			fmt.Fprintln(out, tui.Status(true, "Graph is valid"))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("root", "", "node to crawl from (default: first start node)")
}
