package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/virtlist/internal/config"
	"github.com/rshade/virtlist/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the virtlist CLI.
func NewRootCmd(ver string) *cobra.Command {
	return NewRootCmdWithEnv(ver, os.LookupEnv)
}

// NewRootCmdWithEnv creates the root command with an explicit env lookup for
// testability.
func NewRootCmdWithEnv(ver string, lookupEnv func(string) (string, bool)) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:           "virtlist",
		Short:         "Windowing and recycling engine for virtualized lists",
		Long:          "virtlist: browse, simulate and benchmark a virtualized list that keeps a bounded pool of rendering slots",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd, lookupEnv); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "config file (default $VIRTLIST_HOME/config.yaml or ~/.virtlist/config.yaml)")
	cmd.PersistentFlags().String("project-dir", "", "project directory holding a .virtlist/config.yaml overlay")
	cmd.AddCommand(NewViewCmd(), NewSimulateCmd(), NewBenchCmd(), NewSeedCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Browse 100k generated items in the terminal
  virtlist view --count 100000

  # Seed a SQLite store and browse it
  virtlist seed --db items.db --count 50000
  virtlist view --db items.db

  # Replay a scroll script against the engine and report slot churn
  virtlist simulate --count 10000 --steps 500 --mutate-every 25

  # Benchmark every layout mode concurrently
  virtlist bench --output json

  # Initialize configuration
  virtlist config init`

// loadConfig resolves the config file, applies the project overlay and the
// environment, and installs the result as the global configuration.
func loadConfig(cmd *cobra.Command, lookupEnv func(string) (string, bool)) error {
	ctx := cmd.Context()
	path, _ := cmd.Flags().GetString("config")
	projectFlag, _ := cmd.Flags().GetString("project-dir")

	cfg, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	cfg = config.WithProjectOverlay(ctx, cfg, config.ResolveProjectDir(ctx, projectFlag, wd))

	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return fmt.Errorf("applying environment overrides: %w", err)
	}
	config.SetGlobalConfig(cfg)
	return nil
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
