package listview

import (
	"errors"
	"math"

	"github.com/rs/zerolog"

	"github.com/rshade/virtlist/internal/layout"
	"github.com/rshade/virtlist/internal/recycle"
)

// ErrDestroyed is returned by configuring operations called after Destroy.
var ErrDestroyed = errors.New("listview: controller destroyed")

// ErrNilContent is returned when a controller is given no content source.
var ErrNilContent = errors.New("listview: nil content")

// State is the controller lifecycle state.
type State int

// Controller states. Destroyed is terminal.
const (
	StateIdle State = iota
	StateReconciling
	StateDestroyed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReconciling:
		return "reconciling"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Stats accumulates the work done by a controller over its lifetime.
type Stats struct {
	recycle.Stats

	// Passes is the number of pool reconciliations run.
	Passes int

	// Skipped counts accepted scrolls that left the window unchanged.
	Skipped int
}

// Controller orchestrates windowing for one list.
type Controller[T, H any] struct {
	metrics *layout.Metrics
	calc    *layout.Calculator
	pool    *recycle.Pool[T, H]
	content recycle.Content[T]

	opts   options
	logger zerolog.Logger

	state   State
	dirty   bool
	scrollX float64
	scrollY float64

	// window and length describe the last reconciled pass.
	window layout.Range
	length int

	empty      bool
	emptyKnown bool
	stats      Stats
}

// New validates cfg and returns a controller rendering content through
// factory. The initial pass runs before New returns.
func New[T, H any](
	cfg layout.Config,
	content recycle.Content[T],
	factory recycle.Factory[T, H],
	opts ...Option,
) (*Controller[T, H], error) {
	o := options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With().Str("component", "listview").Logger()

	if content == nil {
		return nil, ErrNilContent
	}
	metrics, err := layout.NewMetrics(cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("rejected list configuration")
		return nil, err
	}

	c := &Controller[T, H]{
		metrics: metrics,
		calc:    layout.NewCalculator(metrics),
		pool:    recycle.NewPool(factory),
		content: content,
		opts:    o,
		logger:  logger,
	}
	c.fullPass("init")
	return c, nil
}

// State returns the lifecycle state.
func (c *Controller[T, H]) State() State {
	return c.state
}

// Dirty reports whether a full pass is pending.
func (c *Controller[T, H]) Dirty() bool {
	return c.dirty
}

// Window returns the range rendered by the last pass.
func (c *Controller[T, H]) Window() layout.Range {
	return c.window
}

// Scroll returns the stored offsets.
func (c *Controller[T, H]) Scroll() (x, y float64) {
	return c.scrollX, c.scrollY
}

// Slots returns a snapshot of the pool in ordinal order.
func (c *Controller[T, H]) Slots() []recycle.Slot[H] {
	return c.pool.Slots()
}

// Stats returns the accumulated work counters.
func (c *Controller[T, H]) Stats() Stats {
	return c.stats
}

// Config returns the current layout configuration.
func (c *Controller[T, H]) Config() layout.Config {
	return c.metrics.Config()
}

// Content returns the bound content source.
func (c *Controller[T, H]) Content() recycle.Content[T] {
	return c.content
}

// Position returns where index is placed under the current layout.
func (c *Controller[T, H]) Position(index int) layout.Position {
	return c.metrics.PositionFor(index, c.metrics.TotalColumnCount(c.content.Len()))
}

// Extent returns the scrollable content size.
func (c *Controller[T, H]) Extent() (width, height float64) {
	n := c.content.Len()
	return c.metrics.TotalWidth(n), c.metrics.TotalHeight(n)
}

// MaxScroll returns the largest valid offsets.
func (c *Controller[T, H]) MaxScroll() (x, y float64) {
	n := c.content.Len()
	return c.metrics.MaxScrollLeft(n), c.metrics.MaxScrollTop(n)
}

// Columns returns the number of columns rendered in the viewport.
func (c *Controller[T, H]) Columns() int {
	return c.metrics.ColumnCount(c.content.Len())
}

// TotalColumns returns the number of columns across the whole content, which
// is the index stride between vertically adjacent items.
func (c *Controller[T, H]) TotalColumns() int {
	return c.metrics.TotalColumnCount(c.content.Len())
}

// SetScroll clamps the offsets to the scrollable range and stores them. It
// reports whether the stored offsets changed. The pool is reconciled only
// when the window moved.
func (c *Controller[T, H]) SetScroll(x, y float64) bool {
	if c.state == StateDestroyed {
		return false
	}

	n := c.content.Len()
	x = clamp(x, c.metrics.MaxScrollLeft(n))
	y = clamp(y, c.metrics.MaxScrollTop(n))
	if x == c.scrollX && y == c.scrollY {
		return false
	}

	prevX, prevY := c.scrollX, c.scrollY
	c.scrollX, c.scrollY = x, y

	if c.state == StateReconciling {
		c.dirty = true
		c.emitScroll(prevX, prevY)
		return true
	}

	r := c.calc.Compute(y, x, n)
	if r == c.window && n == c.length {
		c.stats.Skipped++
	} else {
		c.reconcile("scroll", r, n, false)
	}
	c.emitScroll(prevX, prevY)
	return true
}

// ScrollBy moves the offsets by the given deltas.
func (c *Controller[T, H]) ScrollBy(dx, dy float64) bool {
	return c.SetScroll(c.scrollX+dx, c.scrollY+dy)
}

// Resize changes the viewport size. When the visible column count changes the
// vertical offset is rescaled to keep the same content in view.
func (c *Controller[T, H]) Resize(width, height float64) error {
	return c.relayout(func() error { return c.metrics.SetViewport(width, height) })
}

// SetItemWidth changes the grid column width.
func (c *Controller[T, H]) SetItemWidth(width float64) error {
	return c.relayout(func() error { return c.metrics.SetItemWidth(width) })
}

// SetRows switches between fixed and variable row heights. The height cache
// is discarded.
func (c *Controller[T, H]) SetRows(rows layout.Rows) error {
	if c.state == StateDestroyed {
		return ErrDestroyed
	}
	if err := c.metrics.SetRows(rows); err != nil {
		c.logger.Warn().Err(err).Msg("rejected row configuration")
		return err
	}
	c.dirty = true
	return nil
}

func (c *Controller[T, H]) relayout(apply func() error) error {
	if c.state == StateDestroyed {
		return ErrDestroyed
	}
	n := c.content.Len()
	before := c.metrics.ColumnCount(n)
	if err := apply(); err != nil {
		c.logger.Warn().Err(err).Msg("rejected viewport configuration")
		return err
	}
	if after := c.metrics.ColumnCount(n); after != before {
		c.OnColumnCountChange(before, after)
	}
	c.dirty = true
	return nil
}

// OnColumnCountChange rescales the vertical offset by oldCount/newCount and
// clamps it to the new maximum, then schedules a full pass.
func (c *Controller[T, H]) OnColumnCountChange(oldCount, newCount int) {
	if c.state == StateDestroyed || oldCount <= 0 || newCount <= 0 {
		return
	}
	prevY := c.scrollY
	y := c.scrollY * float64(oldCount) / float64(newCount)
	c.scrollY = clamp(y, c.metrics.MaxScrollTop(c.content.Len()))
	c.dirty = true

	c.logger.Debug().
		Str("operation", "columns").
		Int("old", oldCount).
		Int("new", newCount).
		Float64("scroll_top", c.scrollY).
		Msg("column count changed")
	c.emitScroll(c.scrollX, prevY)
}

// OnRowHeightChange discards every cached height and schedules a full pass.
// Call it when the height function starts returning different values.
func (c *Controller[T, H]) OnRowHeightChange() {
	if c.state == StateDestroyed {
		return
	}
	c.metrics.InvalidateHeights()
	c.dirty = true
}

// OnContentMutation reacts to removed items at start being replaced by added
// items. When the splice touches the rendered window the pooled slots are
// pointed at their new indices in position order right away; a full pass is
// scheduled in every case.
func (c *Controller[T, H]) OnContentMutation(start, removed, added int) {
	if c.state == StateDestroyed {
		return
	}
	if c.metrics.Config().Rows.Variable() {
		c.metrics.Heights().InvalidateFrom(start)
	}
	c.dirty = true

	lastStart, lastEnd := c.window.Start, c.window.End(c.length)
	end := start + max(removed, added)
	if c.state == StateReconciling || start >= lastEnd || end <= lastStart {
		return
	}

	n := c.content.Len()
	c.state = StateReconciling
	stats := c.pool.Reassign(lastStart, c.content, c.metrics.Placer(n))
	c.state = StateIdle
	c.stats.Stats = c.stats.Stats.Add(stats)

	c.logger.Debug().
		Str("operation", "mutation").
		Int("start", start).
		Int("removed", removed).
		Int("added", added).
		Int("updated", stats.Updated).
		Int("replaced", stats.Replaced).
		Msg("reassigned window after mutation")
}

// SetContent binds the controller to another content source and schedules a
// full pass.
func (c *Controller[T, H]) SetContent(content recycle.Content[T]) {
	if c.state == StateDestroyed || content == nil {
		return
	}
	c.content = content
	c.metrics.InvalidateHeights()
	c.dirty = true
}

// Flush runs the pending full pass, if any, and reports whether it ran.
// Hosts call it once per frame or tick.
func (c *Controller[T, H]) Flush() bool {
	if c.state != StateIdle || !c.dirty {
		return false
	}
	c.dirty = false
	c.fullPass("flush")
	return true
}

// Destroy releases every rendering unit. The controller ignores all later
// calls, and a pending pass is dropped.
func (c *Controller[T, H]) Destroy() {
	if c.state == StateDestroyed {
		return
	}
	stats := c.pool.Close()
	c.stats.Stats = c.stats.Stats.Add(stats)
	c.state = StateDestroyed
	c.dirty = false
	c.window = layout.Range{}

	c.logger.Debug().
		Str("operation", "destroy").
		Int("destroyed", stats.Destroyed).
		Msg("controller destroyed")
}

// fullPass clamps the stored offsets to the current extent and reconciles
// every slot.
func (c *Controller[T, H]) fullPass(op string) {
	n := c.content.Len()
	prevX, prevY := c.scrollX, c.scrollY
	c.scrollX = clamp(c.scrollX, c.metrics.MaxScrollLeft(n))
	c.scrollY = clamp(c.scrollY, c.metrics.MaxScrollTop(n))

	r := c.calc.Compute(c.scrollY, c.scrollX, n)
	c.reconcile(op, r, n, true)
	c.emitScroll(prevX, prevY)
}

func (c *Controller[T, H]) reconcile(op string, r layout.Range, n int, force bool) {
	c.state = StateReconciling
	stats := c.pool.Reconcile(r, c.content, c.metrics.Placer(n), force)
	c.window = r
	c.length = n
	c.stats.Stats = c.stats.Stats.Add(stats)
	c.stats.Passes++
	c.state = StateIdle

	c.logger.Debug().
		Str("operation", op).
		Int("start", r.Start).
		Int("count", r.Count).
		Int("length", n).
		Int("created", stats.Created).
		Int("destroyed", stats.Destroyed).
		Int("replaced", stats.Replaced).
		Int("updated", stats.Updated).
		Msg("reconciled")

	c.emitEmpty(n == 0)
}

func (c *Controller[T, H]) emitScroll(prevX, prevY float64) {
	if c.scrollY != prevY {
		for _, fn := range c.opts.scroll {
			fn(ScrollEvent{Axis: AxisVertical, Offset: c.scrollY})
		}
	}
	if c.scrollX != prevX {
		for _, fn := range c.opts.scroll {
			fn(ScrollEvent{Axis: AxisHorizontal, Offset: c.scrollX})
		}
	}
}

func (c *Controller[T, H]) emitEmpty(empty bool) {
	if c.emptyKnown && c.empty == empty {
		return
	}
	c.empty = empty
	c.emptyKnown = true
	for _, fn := range c.opts.empty {
		fn(empty)
	}
}

// clamp limits v to [0, upper]. NaN collapses to zero.
func clamp(v, upper float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, upper)
}
