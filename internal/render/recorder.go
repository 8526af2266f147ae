package render

import (
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/rshade/virtlist/internal/layout"
)

// DefaultKind is the unit kind reported when no kind function is configured.
const DefaultKind = "item"

// Op names a factory call.
type Op string

// Factory operations recorded by Recorder.
const (
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpDestroy Op = "destroy"
)

// Event is one recorded factory call.
type Event struct {
	Op     Op
	Handle ulid.ULID
	Index  int
	Pos    layout.Position
}

// Counts totals the factory calls a Recorder has seen.
type Counts struct {
	Created   int
	Updated   int
	Destroyed int
}

// Unit is the handle a Recorder hands out for each created slot.
type Unit[T any] struct {
	ID    ulid.ULID
	Kind  string
	Index int
	Pos   layout.Position
	Item  T
	Live  bool
}

type options struct {
	kind   func(index int) string
	events bool
	logger zerolog.Logger
}

// Option configures a Recorder.
type Option func(*options)

// WithKinds sets the function deciding which unit kind each index needs.
func WithKinds(kind func(index int) string) Option {
	return func(o *options) { o.kind = kind }
}

// WithEvents keeps every call in an in-memory event log.
func WithEvents() Option {
	return func(o *options) { o.events = true }
}

// WithLogger traces every call at trace level.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Recorder is a headless renderer factory. It keeps unit state in memory and
// counts every call, which makes it the reference host for simulations and
// tests.
type Recorder[T any] struct {
	opts   options
	units  map[ulid.ULID]*Unit[T]
	events []Event
	counts Counts
}

// NewRecorder returns a Recorder configured by opts.
func NewRecorder[T any](opts ...Option) *Recorder[T] {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Recorder[T]{
		opts:  o,
		units: make(map[ulid.ULID]*Unit[T]),
	}
}

// Create implements recycle.Factory.
func (r *Recorder[T]) Create(index int) *Unit[T] {
	u := &Unit[T]{
		ID:    ulid.Make(),
		Kind:  r.Kind(index),
		Index: index,
		Live:  true,
	}
	r.units[u.ID] = u
	r.counts.Created++
	r.record(Event{Op: OpCreate, Handle: u.ID, Index: index})
	return u
}

// Update implements recycle.Factory.
func (r *Recorder[T]) Update(u *Unit[T], index int, pos layout.Position, item T) {
	u.Index = index
	u.Pos = pos
	u.Item = item
	r.counts.Updated++
	r.record(Event{Op: OpUpdate, Handle: u.ID, Index: index, Pos: pos})
}

// Destroy implements recycle.Factory.
func (r *Recorder[T]) Destroy(u *Unit[T]) {
	u.Live = false
	delete(r.units, u.ID)
	r.counts.Destroyed++
	r.record(Event{Op: OpDestroy, Handle: u.ID, Index: u.Index})
}

// Kind implements recycle.Factory.
func (r *Recorder[T]) Kind(index int) string {
	if r.opts.kind == nil {
		return DefaultKind
	}
	return r.opts.kind(index)
}

// Counts returns the totals so far.
func (r *Recorder[T]) Counts() Counts {
	return r.counts
}

// Live returns the number of units created and not yet destroyed.
func (r *Recorder[T]) Live() int {
	return len(r.units)
}

// Events returns the recorded calls. It is empty unless WithEvents was set.
func (r *Recorder[T]) Events() []Event {
	return r.events
}

// Reset clears counts and events but keeps live units.
func (r *Recorder[T]) Reset() {
	r.counts = Counts{}
	r.events = r.events[:0]
}

func (r *Recorder[T]) record(e Event) {
	r.opts.logger.Trace().
		Str("component", "render").
		Str("op", string(e.Op)).
		Str("handle", e.Handle.String()).
		Int("index", e.Index).
		Msg("factory call")
	if r.opts.events {
		r.events = append(r.events, e)
	}
}
