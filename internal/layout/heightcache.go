package layout

import (
	"math"
	"sort"
)

// HeightCache is a lazily extended prefix-sum table over a HeightFunc.
// cum[i] holds the total height of items [0, i). The table only grows
// forward; a query below the cursor is answered from the table directly.
//
// A HeightCache belongs to exactly one list and is not safe for concurrent use.
type HeightCache struct {
	fn     HeightFunc
	cum    []float64
	cursor int
}

// NewHeightCache returns an empty cache over fn.
func NewHeightCache(fn HeightFunc) *HeightCache {
	return &HeightCache{fn: fn, cum: []float64{0}}
}

// HeightUpTo returns the cumulative height of all items before index.
// Negative indices resolve to zero.
func (h *HeightCache) HeightUpTo(index int) float64 {
	if index <= 0 || h.fn == nil {
		return 0
	}
	h.extend(index)
	return h.cum[index]
}

// Cursor returns the highest index whose prefix is already resolved.
func (h *HeightCache) Cursor() int {
	return h.cursor
}

// Invalidate drops every resolved prefix. It is called when the height
// function or the row height configuration changes.
func (h *HeightCache) Invalidate() {
	h.cum = append(h.cum[:0], 0)
	h.cursor = 0
}

// InvalidateFrom drops resolved prefixes past index, keeping cum[0..index].
// Items at or after index must be re-measured on the next query.
func (h *HeightCache) InvalidateFrom(index int) {
	if index < 0 {
		index = 0
	}
	if index >= h.cursor {
		return
	}
	h.cum = h.cum[:index+1]
	h.cursor = index
}

// SetFunc replaces the height function and invalidates the cache.
func (h *HeightCache) SetFunc(fn HeightFunc) {
	h.fn = fn
	h.Invalidate()
}

// FirstReaching returns the smallest index i in [0, limit) such that
// HeightUpTo(i+1) >= offset, or limit when no such index exists.
// Resolved prefixes are binary searched; the remainder is filled forward.
func (h *HeightCache) FirstReaching(offset float64, limit int) int {
	if limit <= 0 {
		return limit
	}
	if h.cursor > 0 && h.cum[h.cursor] >= offset {
		// cum is non-decreasing, so the first i+1 with cum[i+1] >= offset
		// lies inside the resolved table.
		i := sort.Search(h.cursor, func(i int) bool {
			return h.cum[i+1] >= offset
		})
		if i < limit {
			return i
		}
		return limit
	}
	for i := h.cursor; i < limit; i++ {
		if h.HeightUpTo(i+1) >= offset {
			return i
		}
	}
	return limit
}

func (h *HeightCache) extend(index int) {
	if index <= h.cursor {
		return
	}
	if cap(h.cum) <= index {
		grown := make([]float64, len(h.cum), growCap(cap(h.cum), index+1))
		copy(grown, h.cum)
		h.cum = grown
	}
	for i := h.cursor; i < index; i++ {
		h.cum = append(h.cum, h.cum[i]+measure(h.fn, i))
	}
	h.cursor = index
}

// measure returns fn(i), counting negative and non-finite heights as zero so
// the prefix sums stay finite and non-decreasing.
func measure(fn HeightFunc, i int) float64 {
	v := fn(i)
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func growCap(current, needed int) int {
	next := current * 2
	if next < needed {
		next = needed
	}
	return next
}
