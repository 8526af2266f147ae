package layout

import "math"

// Position is the top-left corner of an item inside the scrollable content.
type Position struct {
	X float64
	Y float64
}

// ColumnCount returns how many columns are visible in a viewport of
// viewportWidth. Bounded-height lists round up and add one buffer column when
// more columns exist than fit, so a trailing partial column never leaves a gap
// while scrolling horizontally. Unbounded lists round down.
func ColumnCount(viewportWidth, itemWidth, totalWidth float64, bounded bool) int {
	if itemWidth <= 0 || viewportWidth <= itemWidth {
		return 1
	}

	round := math.Floor
	if bounded {
		round = math.Ceil
	}
	total := int(round(totalWidth / itemWidth))
	count := int(round(viewportWidth / itemWidth))

	if count < total && bounded {
		count++
	}
	if count < 1 {
		count = 1
	}
	return count
}

// TotalColumnCount returns how many columns the full content extent holds.
// It is always at least one.
func TotalColumnCount(totalWidth, itemWidth float64) int {
	if itemWidth <= 0 || totalWidth <= itemWidth {
		return 1
	}
	return int(math.Floor(totalWidth / itemWidth))
}

// Metrics computes list geometry for a Config. It owns the HeightCache used
// in variable-height mode and invalidates it whenever row heights change.
type Metrics struct {
	cfg   Config
	cache *HeightCache
}

// NewMetrics validates cfg and returns Metrics for it.
func NewMetrics(cfg Config) (*Metrics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Metrics{cfg: cfg, cache: NewHeightCache(nil)}
	if cfg.Rows.Variable() {
		m.cache.SetFunc(cfg.Rows.fn)
	}
	return m, nil
}

// Config returns the current configuration.
func (m *Metrics) Config() Config {
	return m.cfg
}

// Heights returns the cumulative height cache.
func (m *Metrics) Heights() *HeightCache {
	return m.cache
}

// SetViewport changes the viewport size. Cached heights are kept.
func (m *Metrics) SetViewport(width, height float64) error {
	return m.update(func(c *Config) {
		c.ViewportWidth = width
		c.ViewportHeight = height
	})
}

// SetItemWidth changes the grid column width. Cached heights are kept.
func (m *Metrics) SetItemWidth(width float64) error {
	return m.update(func(c *Config) { c.ItemWidth = width })
}

// SetRows switches the row height mode and invalidates the height cache.
func (m *Metrics) SetRows(rows Rows) error {
	if err := m.update(func(c *Config) { c.Rows = rows }); err != nil {
		return err
	}
	m.cache.SetFunc(rows.fn)
	return nil
}

func (m *Metrics) update(apply func(*Config)) error {
	next := m.cfg
	apply(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	m.cfg = next
	return nil
}

// InvalidateHeights drops every cached cumulative height.
func (m *Metrics) InvalidateHeights() {
	m.cache.Invalidate()
}

// itemWidth is the configured item width, treating unset as 1 so divisions
// stay finite.
func (m *Metrics) itemWidth() float64 {
	if m.cfg.ItemWidth <= 0 {
		return 1
	}
	return m.cfg.ItemWidth
}

// TotalHeight returns the height of the whole content for n items.
func (m *Metrics) TotalHeight(n int) float64 {
	if m.cfg.Bounded() {
		return m.cfg.BoundHeight
	}
	if n <= 0 {
		if m.cfg.Rows.Variable() {
			return 0
		}
		return m.cfg.BottomPadding
	}
	if m.cfg.Rows.Variable() {
		return m.cache.HeightUpTo(n)
	}
	rows := math.Ceil(float64(n) / float64(m.ColumnCount(n)))
	return rows*m.cfg.Rows.fixed + m.cfg.BottomPadding
}

// TotalWidth returns the width of the whole content for n items. Only
// bounded-height lists grow wider than the viewport.
func (m *Metrics) TotalWidth(n int) float64 {
	if !m.cfg.Bounded() {
		return m.cfg.ViewportWidth
	}
	totalRows := math.Ceil(m.cfg.BoundHeight / m.cfg.Rows.fixed)
	if totalRows < 1 {
		totalRows = 1
	}
	return math.Ceil(float64(n)/totalRows) * m.cfg.ItemWidth
}

// ColumnCount returns the number of columns rendered in the viewport.
func (m *Metrics) ColumnCount(n int) int {
	return ColumnCount(m.cfg.ViewportWidth, m.cfg.ItemWidth, m.TotalWidth(n), m.cfg.Bounded())
}

// TotalColumnCount returns the number of columns across the full content.
func (m *Metrics) TotalColumnCount(n int) int {
	return TotalColumnCount(m.TotalWidth(n), m.cfg.ItemWidth)
}

// MaxScrollTop is the largest valid vertical scroll offset.
func (m *Metrics) MaxScrollTop(n int) float64 {
	return math.Max(0, m.TotalHeight(n)-m.cfg.ViewportHeight)
}

// MaxScrollLeft is the largest valid horizontal scroll offset.
func (m *Metrics) MaxScrollLeft(n int) float64 {
	return math.Max(0, m.TotalWidth(n)-m.cfg.ViewportWidth)
}

// PositionFor returns where the item at index is placed when the content
// spans totalColumns columns. Variable-height lists use the cumulative
// height before index as the vertical coordinate.
func (m *Metrics) PositionFor(index, totalColumns int) Position {
	if totalColumns < 1 {
		totalColumns = 1
	}
	x := float64(index%totalColumns) * m.itemWidth()
	if m.cfg.Rows.Variable() {
		return Position{X: x, Y: m.cache.HeightUpTo(index)}
	}
	return Position{X: x, Y: m.cfg.Rows.fixed * float64(index/totalColumns)}
}

// Placer returns PositionFor with the total column count for n items
// resolved up front.
func (m *Metrics) Placer(n int) func(index int) Position {
	total := m.TotalColumnCount(n)
	return func(index int) Position {
		return m.PositionFor(index, total)
	}
}
