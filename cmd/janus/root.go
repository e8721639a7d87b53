package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "janus",
	Short: "Janus - deterministic gate between intent producers and executors",
	Long: `Janus sits between systems that produce intents and the executor that
carries them out. Nothing executes without passing through the gate.

Each submission runs one execution cycle:
  - Intake validation and input freezing
  - Evaluation against a pinned, versioned policy set
  - One binding decision: permit, suppress, or halt
  - At most one dispatch to the executor (permit only)
  - A hash-chained, append-only audit record

Decisions are final once issued and can be reproduced offline from the
audit archive.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
