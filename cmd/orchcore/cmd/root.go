// Package cmd implements the orchcore CLI's cobra command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kandev/orchcore/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "orchcore",
	Short: "Drive the orchestration core's execution strategies from the command line",
	Long: `orchcore is a harness over the orchestration core library: it builds a
session, spawns one child process per prompt against an external agent CLI,
and composes them using one of the core's execution strategies (parallel,
sequential, fallback, batched).`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "directory to search for config.yaml (default: current directory)")
	rootCmd.PersistentFlags().String("working-dir", "", "working directory for spawned children (overrides config)")
	rootCmd.PersistentFlags().String("log-root", "", "root directory for session logs (overrides config)")
	rootCmd.PersistentFlags().String("model", "", "model forwarded to --model on every child (overrides config)")
	rootCmd.PersistentFlags().String("agent-binary", "", "agent executable to spawn (overrides config)")
	rootCmd.PersistentFlags().Bool("stream", true, "mirror captured child output to the console as it arrives")
}

// loadConfig loads the layered config, then applies any flags the caller
// actually set on top, following the same override precedence as the rest
// of the pack's CLIs: explicit flag > config file / env > default.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadWithPath(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if v, _ := cmd.Flags().GetString("working-dir"); v != "" {
		cfg.WorkingDir = v
	}
	if v, _ := cmd.Flags().GetString("log-root"); v != "" {
		cfg.LogRoot = v
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.DefaultModel = v
	}
	if v, _ := cmd.Flags().GetString("agent-binary"); v != "" {
		cfg.AgentBinary = v
	}

	if cfg.WorkingDir == "" {
		cfg.WorkingDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
	}

	return cfg, nil
}

// Fatal prints an error and exits, matching the rest of the pack's CLIs.
func Fatal(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+msg+"\n", args...)
	os.Exit(1)
}
