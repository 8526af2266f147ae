package config

import (
	"github.com/rshade/virtlist/internal/logging"
)

// ToLoggingConfig maps the file settings onto a logging.Config. A configured
// file selects file output; otherwise logs go to stderr.
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	cfg := logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: logging.OutputStderr,
		Caller: lc.Caller,
	}
	if lc.File != "" {
		cfg.Output = logging.OutputFile
		cfg.File = lc.File
	}
	return cfg
}

// GetLoggingConfig returns a copy of the global logging section for the
// caller to adjust with command-line overrides.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}
