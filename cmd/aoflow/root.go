package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/aoflow/internal/config"
	"github.com/aretw0/aoflow/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	graphPath string
	logLevel  string

	cfg    *config.Config
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "aoflow",
	Short: "aoflow compiles node graphs into Lua for AO processes",
	Long: `aoflow reads a graph of handlers, conditionals, loops, message sends and
code blocks, and generates the Lua program of an AO process from it.

The graph is a JSON or YAML snapshot file, a Loam directory with one document
per node, or a snapshot kept in a store (memory, file or Redis).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if graphPath != "" {
			c.Graph.Source = "file"
			c.Graph.Path = graphPath
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		cfg = c
		logger = logging.New(logging.Options{Level: c.Log.Level, Format: c.Log.Format})
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.DefaultFile+")")
	rootCmd.PersistentFlags().StringVarP(&graphPath, "graph", "g", "", "graph snapshot file or Loam directory (overrides graph.path)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}
