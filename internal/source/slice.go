package source

import (
	"fmt"
	"sync"
)

// Slice is an in-memory collection that notifies subscribers of every
// structural change. It is safe for concurrent use, though listeners run on
// the mutating goroutine.
type Slice[T any] struct {
	Notifier

	mu    sync.RWMutex
	items []T
}

// NewSlice returns a Slice holding a copy of items.
func NewSlice[T any](items ...T) *Slice[T] {
	s := &Slice[T]{}
	s.items = append(s.items, items...)
	return s
}

// Len returns the number of items.
func (s *Slice[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// At returns the item at index. It panics if index is out of range, like a
// slice expression.
func (s *Slice[T]) At(index int) T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[index]
}

// Items returns a copy of the current items.
func (s *Slice[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Insert places items before index. index may equal Len to append.
func (s *Slice[T]) Insert(index int, items ...T) error {
	if len(items) == 0 {
		return nil
	}
	return s.splice(index, 0, items)
}

// Append adds items at the end.
func (s *Slice[T]) Append(items ...T) {
	if len(items) == 0 {
		return
	}
	s.mu.Lock()
	start := len(s.items)
	s.items = append(s.items, items...)
	s.mu.Unlock()

	s.Notify(Mutation{Start: start, Added: len(items)})
}

// Remove deletes count items starting at index.
func (s *Slice[T]) Remove(index, count int) error {
	if count == 0 {
		return nil
	}
	return s.splice(index, count, nil)
}

// Replace overwrites the item at index. Subscribers see a one-for-one splice.
func (s *Slice[T]) Replace(index int, item T) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.items) {
		n := len(s.items)
		s.mu.Unlock()
		return fmt.Errorf("replace index %d out of range [0,%d)", index, n)
	}
	s.items[index] = item
	s.mu.Unlock()

	s.Notify(Mutation{Start: index, Removed: 1, Added: 1})
	return nil
}

// Set swaps the whole contents. Subscribers see every old item removed and
// every new one added at index zero.
func (s *Slice[T]) Set(items []T) {
	s.mu.Lock()
	removed := len(s.items)
	s.items = append([]T(nil), items...)
	s.mu.Unlock()

	s.Notify(Mutation{Start: 0, Removed: removed, Added: len(items)})
}

func (s *Slice[T]) splice(index, remove int, add []T) error {
	s.mu.Lock()
	n := len(s.items)
	if index < 0 || index > n || remove < 0 || index+remove > n {
		s.mu.Unlock()
		return fmt.Errorf("splice [%d,%d) out of range [0,%d]", index, index+remove, n)
	}

	next := make([]T, 0, n-remove+len(add))
	next = append(next, s.items[:index]...)
	next = append(next, add...)
	next = append(next, s.items[index+remove:]...)
	s.items = next
	s.mu.Unlock()

	s.Notify(Mutation{Start: index, Removed: remove, Added: len(add)})
	return nil
}
