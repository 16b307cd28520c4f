package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/aoflow"
	"github.com/aretw0/aoflow/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [node-id]",
	Short: "Run generated code on an AO process",
	Long: `Evaluates the fragment of one node on the target process, or, without a
node id, every node of the main chain in order. A failing node does not stop
the chain.

Execution goes through the "execute" command of the commands file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("target")
		if target == "" {
			target = cfg.Executor.Target
		}
		if target == "" {
			return errors.New("no target process: use --target or executor.target")
		}

		return withApp(nil, func(a *app) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				res, err := a.compiler.RunNode(cmd.Context(), args[0], target)
				if err != nil {
					return err
				}
				run := aoflow.NodeRun{NodeID: args[0], Result: res}
				printRun(cmd, run)
				if !run.OK() {
					return fmt.Errorf("node %s failed", args[0])
				}
				return nil
			}

			runs, err := a.compiler.RunFlow(cmd.Context(), target)
			if err != nil {
				return err
			}
			failed := 0
			for _, r := range runs {
				printRun(cmd, r)
				if !r.OK() {
					failed++
				}
			}
			fmt.Fprintf(out, "%d/%d nodes succeeded\n", len(runs)-failed, len(runs))
			if failed > 0 {
				return fmt.Errorf("%d nodes failed", failed)
			}
			return nil
		})
	},
}

func printRun(cmd *cobra.Command, r aoflow.NodeRun) {
	out := cmd.OutOrStdout()
	label := r.NodeID
	if r.Result.ID != "" {
		label += " (" + r.Result.ID + ")"
	}
	fmt.Fprintln(out, tui.Status(r.OK(), label))

	switch {
	case r.Err != nil:
		fmt.Fprintf(out, "  %v\n", r.Err)
	case r.Result.Error != "":
		fmt.Fprintf(out, "  %s\n", strings.TrimSpace(r.Result.Error))
	case r.Result.Output != "":
		fmt.Fprintf(out, "  %s\n", strings.TrimSpace(r.Result.Output))
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("target", "t", "", "target process id (default executor.target)")
}
