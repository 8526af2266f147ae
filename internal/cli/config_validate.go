package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/virtlist/internal/config"
	"github.com/rshade/virtlist/internal/layout"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration for syntax and semantic correctness.

This includes:
- Schema version compatibility
- Log level
- List geometry: a row height must be set, heights must be positive,
  dimensions non-negative, and bound_height needs a fixed row_height`,
		Example: `  # Validate current configuration
  virtlist config validate

  # Validate and show detailed information
  virtlist config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := config.GetGlobalConfig()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}
	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Schema version: %s\n", cfg.Version)
	cmd.Printf("  Viewport: %gx%g\n", cfg.List.ViewportWidth, cfg.List.ViewportHeight)
	if len(cfg.List.RowHeights) > 0 {
		cmd.Printf("  Row heights: variable, cycling %v\n", cfg.List.RowHeights)
	} else {
		cmd.Printf("  Row height: %g\n", cfg.List.RowHeight)
	}
	if cfg.List.ItemWidth > 0 {
		cmd.Printf("  Item width: %g (%d columns)\n", cfg.List.ItemWidth,
			layout.ColumnCount(cfg.List.ViewportWidth, cfg.List.ItemWidth, cfg.List.ViewportWidth, false))
	}
	cmd.Printf("  Padding rows: %d\n", cfg.List.PaddingRows)
	if cfg.List.BoundHeight > 0 {
		cmd.Printf("  Bound height: %g\n", cfg.List.BoundHeight)
	}
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
}
