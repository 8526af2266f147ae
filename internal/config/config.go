package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/virtlist/internal/layout"
)

// SchemaVersion is the version written by New and config init.
const SchemaVersion = "1.0.0"

// SupportedSchema is the constraint a config file's version must satisfy.
const SupportedSchema = "^1"

// Environment variables consulted by ApplyEnv.
const (
	EnvLogLevel    = "VIRTLIST_LOG_LEVEL"
	EnvLogFile     = "VIRTLIST_LOG_FILE"
	EnvPaddingRows = "VIRTLIST_PADDING_ROWS"
	EnvHome        = "VIRTLIST_HOME"
	EnvProjectDir  = "VIRTLIST_PROJECT_DIR"
)

// ErrAmbiguousRowHeight is returned when both row_height and row_heights are
// set.
var ErrAmbiguousRowHeight = fmt.Errorf("%w: row_height and row_heights are mutually exclusive",
	layout.ErrInvalidConfig)

// ErrUnsupportedVersion is returned when the schema version does not satisfy
// SupportedSchema.
var ErrUnsupportedVersion = errors.New("unsupported config version")

// Config is the virtlist configuration file.
type Config struct {
	Version string        `yaml:"version"`
	List    ListConfig    `yaml:"list"`
	Logging LoggingConfig `yaml:"logging"`
}

// ListConfig holds the list geometry.
type ListConfig struct {
	ViewportHeight float64 `yaml:"viewport_height"`
	ViewportWidth  float64 `yaml:"viewport_width"`

	// RowHeight selects fixed row heights.
	RowHeight float64 `yaml:"row_height,omitempty"`

	// RowHeights selects variable row heights; item i has height
	// RowHeights[i % len(RowHeights)].
	RowHeights []float64 `yaml:"row_heights,omitempty"`

	ItemWidth     float64 `yaml:"item_width,omitempty"`
	PaddingRows   int     `yaml:"padding_rows"`
	BottomPadding float64 `yaml:"bottom_padding,omitempty"`

	// BoundHeight pins the total content height; zero leaves it derived from
	// the content length.
	BoundHeight float64 `yaml:"bound_height,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
	Caller bool   `yaml:"caller,omitempty"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		Version: SchemaVersion,
		List:    defaultListConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultListConfig() ListConfig {
	return ListConfig{
		ViewportHeight: 24,
		ViewportWidth:  80,
		RowHeight:      1,
		PaddingRows:    layout.DefaultPaddingRows,
	}
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	cfg := New()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	var probe struct {
		List listProbe `yaml:"list"`
	}
	if err = yaml.Unmarshal(data, &probe); err == nil && probe.List.variableOnly() {
		cfg.List.RowHeight = 0
	}
	return cfg, nil
}

// listProbe records which row keys a list section sets, so that a file
// choosing row_heights does not inherit the default fixed row height.
type listProbe struct {
	RowHeight  *float64  `yaml:"row_height"`
	RowHeights []float64 `yaml:"row_heights"`
}

func (p listProbe) variableOnly() bool {
	return p.RowHeight == nil && len(p.RowHeights) > 0
}

// Save writes c as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv applies environment overrides looked up through lookup, which is
// usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFile); ok && v != "" {
		c.Logging.File = v
	}
	if v, ok := lookup(EnvPaddingRows); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s=%q: %w", EnvPaddingRows, v, err)
		}
		c.List.PaddingRows = n
	}
	return nil
}

// Validate checks the schema version, the logging level and the list
// geometry.
func (c *Config) Validate() error {
	if err := checkVersion(c.Version); err != nil {
		return err
	}
	if c.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("invalid logging level %q: %w", c.Logging.Level, err)
		}
	}
	_, err := c.List.ToLayout()
	return err
}

func checkVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUnsupportedVersion, version, err)
	}
	constraint, err := semver.NewConstraint(SupportedSchema)
	if err != nil {
		return fmt.Errorf("parsing schema constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, version, SupportedSchema)
	}
	return nil
}

// ToLayout converts the list settings into a validated layout.Config.
func (l ListConfig) ToLayout() (layout.Config, error) {
	cfg := layout.Config{
		ViewportHeight: l.ViewportHeight,
		ViewportWidth:  l.ViewportWidth,
		ItemWidth:      l.ItemWidth,
		PaddingRows:    l.PaddingRows,
		BottomPadding:  l.BottomPadding,
		BoundHeight:    l.BoundHeight,
	}

	switch {
	case l.RowHeight != 0 && len(l.RowHeights) > 0:
		return layout.Config{}, ErrAmbiguousRowHeight
	case len(l.RowHeights) > 0:
		if err := checkRowHeights(l.RowHeights); err != nil {
			return layout.Config{}, err
		}
		cfg.Rows = layout.VariableHeight(CycledHeights(l.RowHeights))
	case l.RowHeight != 0:
		cfg.Rows = layout.FixedHeight(l.RowHeight)
	}

	if err := cfg.Validate(); err != nil {
		return layout.Config{}, err
	}
	return cfg, nil
}

// checkRowHeights rejects cycled heights that would leave the window unbounded
// or the total height non-finite.
func checkRowHeights(heights []float64) error {
	positive := false
	for i, h := range heights {
		if h < 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return fmt.Errorf("%w: row_heights[%d] is %v", layout.ErrInvalidRowHeights, i, h)
		}
		positive = positive || h > 0
	}
	if !positive {
		return fmt.Errorf("%w: every entry is zero", layout.ErrInvalidRowHeights)
	}
	return nil
}

// CycledHeights returns a height function repeating heights. The slice is
// copied.
func CycledHeights(heights []float64) layout.HeightFunc {
	hs := append([]float64(nil), heights...)
	return func(i int) float64 {
		return hs[i%len(hs)]
	}
}
