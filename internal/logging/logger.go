// Package logging builds zerolog loggers from configuration and carries them
// and a per-command trace ID through contexts.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output destinations.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
	OutputFile   = "file"
)

// Formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config selects the level, format and destination of a logger.
type Config struct {
	Level  string
	Format string
	Output string
	File   string
	Caller bool
}

// LogPathResult is a logger together with where it writes. Close releases the
// log file, if one was opened.
type LogPathResult struct {
	Logger         zerolog.Logger
	UsingFile      bool
	FilePath       string
	FallbackUsed   bool
	FallbackReason string

	closer io.Closer
}

// Close closes the underlying log file. It is safe to call on a zero value.
func (r *LogPathResult) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger builds a logger for cfg. The returned closer releases the log file
// when Output is "file"; it is never nil.
func NewLogger(cfg Config) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	switch cfg.Output {
	case OutputFile:
		if cfg.File == "" {
			return zerolog.Nop(), closer, fmt.Errorf("logging: output %q requires a file path", OutputFile)
		}
		if mkErr := os.MkdirAll(filepath.Dir(cfg.File), 0o750); mkErr != nil {
			return zerolog.Nop(), closer, fmt.Errorf("creating log directory: %w", mkErr)
		}
		f, openErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if openErr != nil {
			return zerolog.Nop(), closer, fmt.Errorf("opening log file %s: %w", cfg.File, openErr)
		}
		out, closer = f, f
	case OutputStdout:
		out = os.Stdout
	default:
		out = os.Stderr
	}

	// Files always get JSON so they stay machine readable.
	if cfg.Format == FormatConsole && cfg.Output != OutputFile {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).Level(level).With().Timestamp()
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger(), closer, nil
}

// NewLoggerWithPath is NewLogger that falls back to stderr when the log file
// cannot be opened. The fallback is reported in the result rather than as an
// error so commands keep running.
func NewLoggerWithPath(cfg Config) LogPathResult {
	logger, closer, err := NewLogger(cfg)
	if err == nil {
		return LogPathResult{
			Logger:    logger,
			UsingFile: cfg.Output == OutputFile,
			FilePath:  cfg.File,
			closer:    closer,
		}
	}

	fallback := cfg
	fallback.Output = OutputStderr
	fallback.File = ""
	logger, _, _ = NewLogger(fallback)
	return LogPathResult{
		Logger:         logger,
		FallbackUsed:   true,
		FallbackReason: err.Error(),
	}
}

// ComponentLogger returns logger tagged with component.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// PrintLogPathMessage tells the user where logs are going.
func PrintLogPathMessage(w io.Writer, path string) {
	_, _ = fmt.Fprintf(w, "Logging to %s\n", path)
}

// PrintFallbackWarning tells the user that file logging failed.
func PrintFallbackWarning(w io.Writer, reason string) {
	_, _ = fmt.Fprintf(w, "Warning: file logging unavailable (%s), logging to stderr\n", reason)
}
