package main

import (
	"fmt"

	fileAdapter "github.com/aretw0/aoflow/pkg/adapters/file"
	"github.com/aretw0/aoflow/pkg/ports"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage graph snapshots in the configured store",
	Long: `Pushes snapshot files into the store selected by store.backend and reads
them back. Set graph.source to "store" and graph.name to compile from it.`,
}

var storePushCmd = &cobra.Command{
	Use:   "push <name> <file>",
	Short: "Save a snapshot file under name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := fileAdapter.NewLoader(args[1]).Load(cmd.Context())
		if err != nil {
			return err
		}
		return withStore(func(store ports.GraphStore) error {
			if err := store.Save(cmd.Context(), args[0], snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d nodes, %d edges)\n", args[0], len(snap.Nodes), len(snap.Edges))
			return nil
		})
	},
}

var storePullCmd = &cobra.Command{
	Use:   "pull <name>",
	Short: "Print a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asYAML, _ := cmd.Flags().GetBool("yaml")
		format := fileAdapter.JSON
		if asYAML {
			format = fileAdapter.YAML
		}
		return withStore(func(store ports.GraphStore) error {
			snap, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := fileAdapter.Encode(snap, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		})
	},
}

var storeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store ports.GraphStore) error {
			names, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		})
	},
}

var storeDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store ports.GraphStore) error {
			return store.Delete(cmd.Context(), args[0])
		})
	},
}

func withStore(fn func(ports.GraphStore) error) error {
	store, _, closeFn, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Warn("close failed", "err", err)
		}
	}()
	return fn(store)
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storePushCmd, storePullCmd, storeListCmd, storeDeleteCmd)
	storePullCmd.Flags().Bool("yaml", false, "print YAML instead of JSON")
}
