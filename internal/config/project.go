package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rshade/virtlist/internal/logging"
)

// projectDirName is the per-project directory holding an overlay config.yaml.
const projectDirName = ".virtlist"

// ResolveProjectDir determines the project-local .virtlist directory path.
// It checks (in order):
//  1. flagValue (--project-dir CLI flag)
//  2. VIRTLIST_PROJECT_DIR env var
//  3. the nearest ancestor of startDir containing a .virtlist directory
//
// Returns an absolute path, or the empty string if no project was found.
// The directory is never created.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}

	if envDir := os.Getenv(EnvProjectDir); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, projectDirName)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// WithProjectOverlay returns a copy of base with projectDir/config.yaml
// shallow-merged on top. A missing overlay or an empty projectDir returns
// base unchanged; a broken overlay is logged and ignored.
func WithProjectOverlay(ctx context.Context, base *Config, projectDir string) *Config {
	if projectDir == "" {
		return base
	}

	overlayPath := filepath.Join(projectDir, "config.yaml")
	if _, err := os.Stat(overlayPath); err != nil {
		return base
	}

	merged := *base
	merged.List.RowHeights = append([]float64(nil), base.List.RowHeights...)
	if err := ShallowMergeYAML(&merged, overlayPath); err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Str("operation", "merge_project_config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("failed to merge project config, using global settings")
		return base
	}

	return &merged
}

// toAbsProjectDir converts dir to an absolute path and appends ".virtlist"
// unless it already ends with it.
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Err(err).
			Str("dir", dir).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}

	if filepath.Base(abs) == projectDirName {
		return abs
	}

	return filepath.Join(abs, projectDirName)
}
