// Command voxlife explores the 256 totalistic rules of a three-dimensional
// cellular automaton: run a single rule, sweep the whole rule space, and
// classify the resulting population trajectories.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/askel-dev/voxlife/config"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "voxlife",
		Short: "3D totalistic cellular automaton lab",
		Long: `voxlife simulates three-dimensional totalistic cellular automata.

Each of the 256 rules maps a cell's neighborhood aggregate (0-7) to alive
or dead. A single seed cell at the grid center evolves for a fixed number
of generations; per-generation metrics feed a trajectory classifier that
sorts rules into behavioral classes.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initRuntime(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (embedded defaults when empty)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newBatchCmd(),
		newClassifyCmd(),
		newExportCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initRuntime loads configuration and installs the default logger. Runs once
// before any subcommand.
func initRuntime(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	if err := config.Init(path); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	var handler slog.Handler
	if jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	} else {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("voxlife version %s\n", version)
		},
	}
}
