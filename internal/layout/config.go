package layout

import (
	"fmt"
	"math"
)

// DefaultPaddingRows is the number of off-screen rows rendered beyond the
// visible band when no explicit value is configured.
const DefaultPaddingRows = 1

// HeightFunc returns the height of the item at index. It must be
// deterministic and non-negative.
type HeightFunc func(index int) float64

// Rows selects how row heights are resolved. It is either a fixed height or
// a per-index height function, never both; the choice is made once when the
// value is built.
type Rows struct {
	fixed float64
	fn    HeightFunc
	set   bool
}

// FixedHeight returns Rows where every row has the same height.
func FixedHeight(height float64) Rows {
	return Rows{fixed: height, set: true}
}

// VariableHeight returns Rows whose heights come from fn.
func VariableHeight(fn HeightFunc) Rows {
	if fn == nil {
		return Rows{}
	}
	return Rows{fn: fn, set: true}
}

// Variable reports whether rows use a per-index height function.
func (r Rows) Variable() bool {
	return r.fn != nil
}

// Fixed returns the fixed row height. It is zero in variable mode.
func (r Rows) Fixed() float64 {
	if r.fn != nil {
		return 0
	}
	return r.fixed
}

// HeightFor returns the height of the item at index under either mode.
func (r Rows) HeightFor(index int) float64 {
	if r.fn != nil {
		return r.fn(index)
	}
	return r.fixed
}

func (r Rows) validate() error {
	switch {
	case !r.set:
		return ErrNoRowHeight
	case r.fn != nil:
		return nil
	case math.IsNaN(r.fixed) || r.fixed <= 0 || math.IsInf(r.fixed, 0):
		return fmt.Errorf("%w: got %v", ErrZeroRowHeight, r.fixed)
	}
	return nil
}

// Config describes the viewport and item geometry for one list.
type Config struct {
	// ViewportHeight is the visible height of the scroll container.
	ViewportHeight float64

	// ViewportWidth is the visible width of the scroll container.
	ViewportWidth float64

	// Rows resolves row heights.
	Rows Rows

	// ItemWidth is the width of one grid column. Zero means a single column list.
	ItemWidth float64

	// PaddingRows is the number of extra rows rendered to hide scroll pop-in.
	PaddingRows int

	// BottomPadding is added to the total height in fixed-height mode.
	BottomPadding float64

	// BoundHeight pins the total height. Zero leaves it derived from content,
	// a positive value enables bounded-height mode where width flexes instead.
	BoundHeight float64
}

// Bounded reports whether the total height is pinned externally.
func (c Config) Bounded() bool {
	return c.BoundHeight > 0
}

// Validate reports the first configuration problem found, or nil.
func (c Config) Validate() error {
	if c.ViewportHeight < 0 || c.ViewportWidth < 0 || math.IsNaN(c.ViewportHeight) || math.IsNaN(c.ViewportWidth) {
		return fmt.Errorf("%w: %vx%v", ErrNegativeViewport, c.ViewportWidth, c.ViewportHeight)
	}
	if c.ItemWidth < 0 || c.PaddingRows < 0 || c.BottomPadding < 0 || c.BoundHeight < 0 {
		return ErrNegativeDimension
	}
	if err := c.Rows.validate(); err != nil {
		return err
	}
	if c.Bounded() && c.Rows.Variable() {
		return ErrBoundedVariableHeight
	}
	return nil
}
