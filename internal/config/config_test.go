package config_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/virtlist/internal/config"
	"github.com/rshade/virtlist/internal/layout"
)

func TestNew_Defaults(t *testing.T) {
	cfg := config.New()

	assert.Equal(t, config.SchemaVersion, cfg.Version)
	assert.Equal(t, layout.DefaultPaddingRows, cfg.List.PaddingRows)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeOverlay(t, `
version: "1.0.0"
list:
  viewport_height: 100
  row_heights: [50, 30, 70]
logging:
  level: debug
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 100, cfg.List.ViewportHeight, 0)
	assert.InDelta(t, 80, cfg.List.ViewportWidth, 0)
	assert.Zero(t, cfg.List.RowHeight)
	assert.Equal(t, 1, cfg.List.PaddingRows)
	assert.Equal(t, "debug", cfg.Logging.Level)

	lc, err := cfg.List.ToLayout()
	require.NoError(t, err)
	assert.True(t, lc.Rows.Variable())
	assert.InDelta(t, 30, lc.Rows.HeightFor(4), 0)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = config.Load(writeOverlay(t, "list: {viewport_height: [}\n"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := config.New()
	cfg.List.ItemWidth = 20
	cfg.Logging.File = "/tmp/virtlist.log"

	require.NoError(t, cfg.Save(path))
	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		config.EnvLogLevel:    "warn",
		config.EnvLogFile:     "/var/log/virtlist.log",
		config.EnvPaddingRows: "4",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := config.New()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "/var/log/virtlist.log", cfg.Logging.File)
	assert.Equal(t, 4, cfg.List.PaddingRows)

	env[config.EnvPaddingRows] = "many"
	err := config.New().ApplyEnv(lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvPaddingRows)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*config.Config) {}},
		{name: "newer minor", mutate: func(c *config.Config) { c.Version = "1.4.2" }},
		{
			name:    "major two",
			mutate:  func(c *config.Config) { c.Version = "2.0.0" },
			wantErr: config.ErrUnsupportedVersion,
		},
		{
			name:    "garbage version",
			mutate:  func(c *config.Config) { c.Version = "latest" },
			wantErr: config.ErrUnsupportedVersion,
		},
		{
			name:    "zero row height",
			mutate:  func(c *config.Config) { c.List.RowHeight = 0 },
			wantErr: layout.ErrNoRowHeight,
		},
		{
			name:    "negative row height",
			mutate:  func(c *config.Config) { c.List.RowHeight = -3 },
			wantErr: layout.ErrZeroRowHeight,
		},
		{
			name:    "both row settings",
			mutate:  func(c *config.Config) { c.List.RowHeights = []float64{1} },
			wantErr: config.ErrAmbiguousRowHeight,
		},
		{
			name:    "negative viewport",
			mutate:  func(c *config.Config) { c.List.ViewportWidth = -1 },
			wantErr: layout.ErrNegativeViewport,
		},
		{
			name: "bounded variable",
			mutate: func(c *config.Config) {
				c.List.RowHeight = 0
				c.List.RowHeights = []float64{1, 2}
				c.List.BoundHeight = 10
			},
			wantErr: layout.ErrBoundedVariableHeight,
		},
		{
			name:    "all zero row heights",
			mutate:  func(c *config.Config) { c.List.RowHeight, c.List.RowHeights = 0, []float64{0, 0} },
			wantErr: layout.ErrInvalidRowHeights,
		},
		{
			name:    "negative row height entry",
			mutate:  func(c *config.Config) { c.List.RowHeight, c.List.RowHeights = 0, []float64{-5, 10} },
			wantErr: layout.ErrInvalidRowHeights,
		},
		{
			name:    "NaN row height entry",
			mutate:  func(c *config.Config) { c.List.RowHeight, c.List.RowHeights = 0, []float64{2, math.NaN()} },
			wantErr: layout.ErrInvalidRowHeights,
		},
		{
			name:    "infinite row height entry",
			mutate:  func(c *config.Config) { c.List.RowHeight, c.List.RowHeights = 0, []float64{math.Inf(1)} },
			wantErr: layout.ErrInvalidRowHeights,
		},
		{
			name:   "zero entries beside a positive one",
			mutate: func(c *config.Config) { c.List.RowHeight, c.List.RowHeights = 0, []float64{0, 3} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := config.New()
	cfg.Logging.Level = "loud"
	assert.Error(t, cfg.Validate())
}

func TestErrAmbiguousRowHeight_IsConfigError(t *testing.T) {
	assert.ErrorIs(t, config.ErrAmbiguousRowHeight, layout.ErrInvalidConfig)
}

func TestCycledHeights(t *testing.T) {
	src := []float64{5, 7}
	fn := config.CycledHeights(src)
	src[0] = 100

	assert.InDelta(t, 5, fn(0), 0)
	assert.InDelta(t, 7, fn(1), 0)
	assert.InDelta(t, 5, fn(2), 0)
}

func TestToLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{Level: "debug", Format: "json"}
	out := lc.ToLoggingConfig()
	assert.Equal(t, "stderr", out.Output)

	lc.File = "/tmp/x.log"
	out = lc.ToLoggingConfig()
	assert.Equal(t, "file", out.Output)
	assert.Equal(t, "/tmp/x.log", out.File)
}
