package main

import (
	"fmt"

	"github.com/aretw0/aoflow/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the flow graph visualization",
	Long: `Inspects the graph and outputs a Mermaid flowchart of it.
With --target, the main chain is first run on that process and each node is
highlighted by its outcome.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("target")

		return withApp(nil, func(a *app) error {
			snap, err := a.compiler.Inspect(cmd.Context())
			if err != nil {
				return err
			}

			var overlay *graph.Overlay
			if target != "" {
				runs, err := a.compiler.RunFlow(cmd.Context(), target)
				if err != nil {
					return err
				}
				overlay = &graph.Overlay{}
				for _, r := range runs {
					if r.OK() {
						overlay.Succeeded = append(overlay.Succeeded, r.NodeID)
					} else {
						overlay.Failed = append(overlay.Failed, r.NodeID)
					}
				}
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(snap, a.compiler.Registry(), overlay))
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("target", "", "run the main chain on this process and highlight the results")
}
