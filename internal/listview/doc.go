// Package listview drives a virtualized list. A Controller owns the layout
// metrics, the height cache and the slot pool of one list, turns scroll,
// resize and content events into windowing passes, and keeps the number of
// live rendering units bounded by what the viewport shows.
//
// Scroll offsets are applied synchronously. Structural changes (resize, row
// height changes, content mutations) only mark the controller dirty; the host
// calls Flush once per frame or tick to run a single full pass no matter how
// many changes arrived.
//
// A Controller is not safe for concurrent use. Hosts that receive mutations
// from other goroutines must serialize them onto the goroutine that calls
// Flush.
package listview
