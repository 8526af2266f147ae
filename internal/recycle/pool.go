package recycle

import (
	"fmt"
	"sort"

	"github.com/rshade/virtlist/internal/layout"
)

// Content is the read side of an item collection.
type Content[T any] interface {
	// Len returns the current number of items.
	Len() int

	// At returns the item at index. Callers only pass indices in [0, Len()).
	At(index int) T
}

// Factory creates, updates and destroys the rendering units backing slots.
// H is the host's handle type for one unit.
type Factory[T, H any] interface {
	// Create instantiates a unit able to render the item at index.
	Create(index int) H

	// Update points a unit at a new index, position and item.
	Update(handle H, index int, pos layout.Position, item T)

	// Destroy releases a unit. The handle is never used again.
	Destroy(handle H)

	// Kind names the unit type required for index. Slots whose kind differs
	// are replaced rather than reused.
	Kind(index int) string
}

// Slot is one reusable rendering unit. Its identity is its ordinal position
// in the pool; the content index is mutable metadata.
type Slot[H any] struct {
	Handle H
	Kind   string
	Index  int
	Pos    layout.Position

	assigned bool
}

// Stats counts the factory calls made by one or more passes.
type Stats struct {
	Created   int
	Destroyed int
	Replaced  int
	Updated   int
}

// Add returns the element-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Created:   s.Created + o.Created,
		Destroyed: s.Destroyed + o.Destroyed,
		Replaced:  s.Replaced + o.Replaced,
		Updated:   s.Updated + o.Updated,
	}
}

// Churn is the number of units created or destroyed.
func (s Stats) Churn() int {
	return s.Created + s.Destroyed
}

// Pool owns the bounded set of slots for one list.
//
// Pool is not safe for concurrent use; a single controller drives it.
type Pool[T, H any] struct {
	factory Factory[T, H]
	slots   []*Slot[H]

	// end is the exclusive end of the last assigned range. Grown slots are
	// first created for the indices following it.
	end    int
	closed bool
}

// NewPool returns an empty pool backed by factory.
func NewPool[T, H any](factory Factory[T, H]) *Pool[T, H] {
	return &Pool[T, H]{factory: factory}
}

// Len returns the number of slots.
func (p *Pool[T, H]) Len() int {
	return len(p.slots)
}

// Closed reports whether Close has been called.
func (p *Pool[T, H]) Closed() bool {
	return p.closed
}

// Slots returns a copy of the slots in ordinal order.
func (p *Pool[T, H]) Slots() []Slot[H] {
	out := make([]Slot[H], len(p.slots))
	for i, s := range p.slots {
		out[i] = *s
	}
	return out
}

// Reconcile resizes the pool to the window and reassigns content indices.
//
// The pool grows or shrinks at the tail by |delta| slots, then every index in
// [r.Start, r.End(n)) is mapped to slot index mod size. A slot already showing
// the same index at the same position is left alone unless force is set.
// place resolves the position of an index.
func (p *Pool[T, H]) Reconcile(
	r layout.Range,
	content Content[T],
	place func(index int) layout.Position,
	force bool,
) Stats {
	var stats Stats
	if p.closed {
		return stats
	}

	n := content.Len()
	needed := r.Slots(n)
	delta := needed - len(p.slots)

	switch {
	case delta > 0:
		index := p.end
		for range delta {
			p.slots = append(p.slots, p.newSlot(clampIndex(index, n)))
			stats.Created++
			index++
		}
	case delta < 0:
		for _, s := range p.slots[needed:] {
			p.factory.Destroy(s.Handle)
			stats.Destroyed++
		}
		clear(p.slots[needed:])
		p.slots = p.slots[:needed]
	}

	stats = stats.Add(p.reuse(r.Start, r.End(n), content, place, force))
	p.end = r.End(n)

	if len(p.slots) != needed {
		panic(fmt.Sprintf("recycle: pool holds %d slots after reconcile, want %d", len(p.slots), needed))
	}
	return stats
}

// Reassign points slots at consecutive indices starting at start without
// resizing the pool. Slots are taken in order of their current content index,
// so the k-th lowest slot shows start+k. Indices at or past Len are skipped.
func (p *Pool[T, H]) Reassign(start int, content Content[T], place func(index int) layout.Position) Stats {
	var stats Stats
	if p.closed {
		return stats
	}

	ordered := make([]int, len(p.slots))
	for i := range ordered {
		ordered[i] = i
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		return p.slots[ordered[a]].Index < p.slots[ordered[b]].Index
	})

	n := content.Len()
	for k, ordinal := range ordered {
		index := start + k
		if index < 0 || index >= n {
			continue
		}
		stats = stats.Add(p.assign(ordinal, index, content, place, true))
	}
	return stats
}

// Close destroys every unit. Later calls to Reconcile and Reassign do nothing.
func (p *Pool[T, H]) Close() Stats {
	var stats Stats
	if p.closed {
		return stats
	}
	p.closed = true
	for _, s := range p.slots {
		p.factory.Destroy(s.Handle)
		stats.Destroyed++
	}
	p.slots = nil
	return stats
}

func (p *Pool[T, H]) reuse(
	start, end int,
	content Content[T],
	place func(index int) layout.Position,
	force bool,
) Stats {
	var stats Stats
	size := len(p.slots)
	if size == 0 {
		return stats
	}
	for index := start; index < end; index++ {
		stats = stats.Add(p.assign(index%size, index, content, place, force))
	}
	return stats
}

// assign points the slot at ordinal to index, replacing its unit in place
// when the required kind changed.
func (p *Pool[T, H]) assign(
	ordinal, index int,
	content Content[T],
	place func(index int) layout.Position,
	force bool,
) Stats {
	var stats Stats
	s := p.slots[ordinal]

	if kind := p.factory.Kind(index); kind != s.Kind {
		p.factory.Destroy(s.Handle)
		s = p.newSlot(index)
		p.slots[ordinal] = s
		stats.Replaced++
		force = true
	}

	pos := place(index)
	if !force && s.assigned && s.Index == index && s.Pos == pos {
		return stats
	}

	p.factory.Update(s.Handle, index, pos, content.At(index))
	s.Index = index
	s.Pos = pos
	s.assigned = true
	stats.Updated++
	return stats
}

func (p *Pool[T, H]) newSlot(index int) *Slot[H] {
	return &Slot[H]{
		Handle: p.factory.Create(index),
		Kind:   p.factory.Kind(index),
		Index:  index,
	}
}

func clampIndex(index, n int) int {
	if index >= n {
		index = n - 1
	}
	if index < 0 {
		index = 0
	}
	return index
}
