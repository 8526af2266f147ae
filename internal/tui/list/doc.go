// Package list hosts a virtualized list in a Bubble Tea program.
//
// The model is the viewport signal source for a listview.Controller: window
// size messages become resizes, cursor movement becomes scrolling, and every
// Update ends with a Flush so queued structural changes are reconciled once
// per message. Cells are the terminal rendering units; only the cells in the
// controller's window exist, so rendering cost follows the terminal height
// rather than the number of items.
//
// Keyboard navigation:
//   - up/down or k/j move by one grid row
//   - left/right or h/l move by one item
//   - pgup/pgdn move by one screen
//   - home/g and end/G jump to the ends
package list
