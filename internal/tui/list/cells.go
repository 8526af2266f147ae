package list

import (
	"github.com/rshade/virtlist/internal/layout"
	"github.com/rshade/virtlist/internal/render"
)

// RenderFunc renders an item as a single line of text.
type RenderFunc[T any] func(item T) string

// Cell is the terminal rendering unit backing one slot.
type Cell struct {
	Index int
	Kind  string
	Pos   layout.Position
	Text  string
	Live  bool
}

// Cells is the recycle.Factory turning items into terminal cells.
type Cells[T any] struct {
	render RenderFunc[T]
	live   int
}

// NewCells returns a factory rendering items with fn.
func NewCells[T any](fn RenderFunc[T]) *Cells[T] {
	return &Cells[T]{render: fn}
}

// Create implements recycle.Factory.
func (c *Cells[T]) Create(index int) *Cell {
	c.live++
	return &Cell{Index: index, Kind: c.Kind(index), Live: true}
}

// Update implements recycle.Factory.
func (c *Cells[T]) Update(cell *Cell, index int, pos layout.Position, item T) {
	cell.Index = index
	cell.Pos = pos
	cell.Text = c.render(item)
}

// Destroy implements recycle.Factory.
func (c *Cells[T]) Destroy(cell *Cell) {
	cell.Live = false
	c.live--
}

// Kind implements recycle.Factory. Every terminal cell has the same kind.
func (c *Cells[T]) Kind(int) string {
	return render.DefaultKind
}

// Live returns the number of cells not yet destroyed.
func (c *Cells[T]) Live() int {
	return c.live
}
