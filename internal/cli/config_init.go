package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/virtlist/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// Inside a project with a .virtlist/ directory (and without --global) it
// writes the project overlay; otherwise it writes the user config file.
func NewConfigInitCmd() *cobra.Command {
	var (
		force  bool
		global bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

The file is written to --config when given. Otherwise, inside a project that
has a .virtlist/ directory, it creates .virtlist/config.yaml; use --global to
write ~/.virtlist/config.yaml instead.`,
		Example: `  # Create the user configuration
  virtlist config init --global

  # Create configuration, overwriting existing
  virtlist config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := initTarget(cmd, global)
			if err != nil {
				return err
			}
			return initConfig(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&global, "global", false, "write the user configuration even inside a project")

	return cmd
}

// initTarget picks the file config init writes.
func initTarget(cmd *cobra.Command, global bool) (string, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return path, nil
	}
	if !global {
		projectFlag, _ := cmd.Flags().GetString("project-dir")
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		if dir := config.ResolveProjectDir(cmd.Context(), projectFlag, wd); dir != "" {
			return filepath.Join(dir, "config.yaml"), nil
		}
	}
	return config.DefaultPath()
}

func initConfig(cmd *cobra.Command, path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	if err := config.New().Save(path); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", path)
	return nil
}
