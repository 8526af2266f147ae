package layout

import "errors"

// ErrInvalidConfig is the root of every configuration error. Callers match it
// with errors.Is regardless of which specific check failed.
var ErrInvalidConfig = errors.New("invalid list layout configuration")

// Configuration errors, each wrapping ErrInvalidConfig.
var (
	ErrNoRowHeight           = wrapConfig("a fixed row height or a height function is required")
	ErrZeroRowHeight         = wrapConfig("row height must be greater than zero")
	ErrNegativeViewport      = wrapConfig("viewport dimensions cannot be negative")
	ErrNegativeDimension     = wrapConfig("item width, padding rows and bottom padding cannot be negative")
	ErrBoundedVariableHeight = wrapConfig("bound height requires a fixed row height")
	ErrInvalidRowHeights     = wrapConfig("row heights must be finite, non-negative and include a positive height")
)

type configError struct {
	msg string
}

func wrapConfig(msg string) error {
	return &configError{msg: msg}
}

func (e *configError) Error() string {
	return ErrInvalidConfig.Error() + ": " + e.msg
}

func (e *configError) Unwrap() error {
	return ErrInvalidConfig
}
