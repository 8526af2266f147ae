package listview

import "github.com/rs/zerolog"

// Axis names a scroll direction.
type Axis int

// Scroll axes.
const (
	AxisVertical Axis = iota
	AxisHorizontal
)

// String returns the axis name used in logs.
func (a Axis) String() string {
	if a == AxisHorizontal {
		return "horizontal"
	}
	return "vertical"
}

// ScrollEvent reports a changed scroll offset on one axis.
type ScrollEvent struct {
	Axis   Axis
	Offset float64
}

// ScrollListener is called after an offset changes, whether or not the change
// caused a reconciliation.
type ScrollListener func(ScrollEvent)

// EmptyListener is called after a pass when the content becomes empty or
// non-empty. The first pass always reports.
type EmptyListener func(empty bool)

type options struct {
	logger zerolog.Logger
	scroll []ScrollListener
	empty  []EmptyListener
}

// Option configures a Controller.
type Option func(*options)

// WithLogger sets the logger used for reconciliation traces.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithScrollListener registers fn for scroll offset changes.
func WithScrollListener(fn ScrollListener) Option {
	return func(o *options) { o.scroll = append(o.scroll, fn) }
}

// WithEmptyListener registers fn for empty-state changes.
func WithEmptyListener(fn EmptyListener) Option {
	return func(o *options) { o.empty = append(o.empty, fn) }
}
