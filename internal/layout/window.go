package layout

import "math"

// Range is the window of content indices a pass renders. Count is the number
// of slots the viewport needs and may exceed the remaining content; the
// rendered indices are [Start, End(n)).
type Range struct {
	Start int
	Count int
}

// End returns the exclusive end of the rendered indices for n items.
func (r Range) End(n int) int {
	return min(n, r.Start+r.Count)
}

// Slots returns how many slots the pool holds for n items.
func (r Range) Slots(n int) int {
	return max(0, min(r.Count, n))
}

// Calculator turns scroll offsets into a Range using Metrics.
type Calculator struct {
	m *Metrics
}

// NewCalculator returns a Calculator over m.
func NewCalculator(m *Metrics) *Calculator {
	return &Calculator{m: m}
}

// Compute returns the window for the given offsets and content length.
// The starting index is computed once and reused for the needed-slot count,
// then clamped so the window never leaves empty trailing space when content
// is shorter than the viewport capacity.
func (c *Calculator) Compute(scrollTop, scrollLeft float64, n int) Range {
	if n < 0 {
		n = 0
	}
	start := c.StartingIndex(scrollTop, scrollLeft, n)
	needed := c.NeededSlots(start, scrollTop, n)
	return Range{
		Start: min(start, max(n-needed, 0)),
		Count: needed,
	}
}

// StartingIndex returns the unclamped first index for the offsets.
func (c *Calculator) StartingIndex(scrollTop, scrollLeft float64, n int) int {
	cfg := c.m.cfg
	totalColumns := c.m.TotalColumnCount(n)

	column := 0
	if totalColumns > 1 {
		column = int(math.Floor(math.Max(0, scrollLeft) / c.m.itemWidth()))
	}
	scrollTop = math.Max(0, scrollTop)

	if !cfg.Rows.Variable() {
		return int(math.Floor(scrollTop/cfg.Rows.fixed))*totalColumns + column
	}

	// Smallest row-group index whose bottom edge reaches scrollTop.
	first := c.m.cache.FirstReaching(scrollTop, n)
	row := (first + totalColumns - 1) / totalColumns * totalColumns
	return row + column
}

// NeededSlots returns how many slots cover the viewport when rendering
// starts at start. In variable-height mode the count depends on start and
// must be recomputed on every pass; heights accumulate from the later of the
// starting item's top and scrollTop, so a partially scrolled first item
// cannot leave the bottom of the viewport uncovered. The variable count never
// exceeds the items left after start plus the padding rows.
func (c *Calculator) NeededSlots(start int, scrollTop float64, n int) int {
	cfg := c.m.cfg
	if cfg.ViewportHeight <= 0 {
		return 0
	}
	if !cfg.Rows.Variable() {
		columns := c.m.ColumnCount(n)
		rows := int(math.Ceil(cfg.ViewportHeight / cfg.Rows.fixed))
		return rows*columns + cfg.PaddingRows*columns
	}

	heights := c.m.cache
	if math.IsNaN(scrollTop) {
		scrollTop = 0
	}
	offset := math.Max(heights.HeightUpTo(start), scrollTop)
	i := 0
	for ; start+i < n; i++ {
		if heights.HeightUpTo(start+i+1)-offset > cfg.ViewportHeight {
			break
		}
	}
	return i + cfg.PaddingRows + 1
}
