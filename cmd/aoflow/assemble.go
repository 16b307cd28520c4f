package main

import (
	"fmt"
	"os"

	"github.com/aretw0/aoflow/internal/presentation/tui"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/spf13/cobra"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "Assemble the full program of the graph",
	Long: `Concatenates the fragments of the main chain, from the start node to the
first "add" node. Use --from and --to to assemble another chain.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		output, _ := cmd.Flags().GetString("output")

		return withApp(nil, func(a *app) error {
			var (
				prog *ports.Program
				err  error
			)
			if from != "" {
				prog, err = a.compiler.AssembleFrom(cmd.Context(), from, to)
			} else {
				prog, err = a.compiler.AssembleProgram(cmd.Context())
			}
			if err != nil {
				return err
			}

			for _, f := range prog.Failures {
				fmt.Fprintln(cmd.ErrOrStderr(), tui.Status(false, f.Error()))
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(prog.Source), 0644); err != nil {
					return fmt.Errorf("writing program: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), tui.Status(true, fmt.Sprintf("%d nodes written to %s", len(prog.Nodes), output)))
				return nil
			}
			return printCode(cmd, "Program", prog.Source)
		})
	},
}

func init() {
	rootCmd.AddCommand(assembleCmd)
	assembleCmd.Flags().String("from", "", "root node of the chain (default: first start node)")
	assembleCmd.Flags().String("to", "", "terminal node of the chain (default: first add node)")
	assembleCmd.Flags().StringP("output", "o", "", "write the program to a file")
	assembleCmd.Flags().Bool("pretty", false, "render highlighted code when stdout is a terminal")
}
