package listview

import "github.com/rshade/virtlist/internal/source"

// Watch forwards every mutation reported by src to c and returns a function
// that stops forwarding. Mutations must arrive on the goroutine driving c.
func Watch[T, H any](c *Controller[T, H], src source.Observable) func() {
	return src.Subscribe(func(m source.Mutation) {
		c.OnContentMutation(m.Start, m.Removed, m.Added)
	})
}
