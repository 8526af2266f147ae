// Package recycle maintains the bounded pool of reusable rendering slots
// behind a virtualized list.
//
// A Pool grows or shrinks only at its tail and otherwise reuses slots in
// place: content index c is always shown by the slot at ordinal c mod size,
// so scrolling within a window of unchanged size costs reassignments only,
// never creations or destructions.
package recycle
