package store_test

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/virtlist/internal/source"
	"github.com/rshade/virtlist/internal/store"
)

func openStore(t *testing.T, opts ...store.Option) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "items.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func generate(n int) []store.Item {
	items := make([]store.Item, n)
	for i := range items {
		items[i] = store.Item{Label: fmt.Sprintf("row %d", i), Height: float64(1 + i%3)}
	}
	return items
}

func labelsOf(s *store.Store) []string {
	out := make([]string, s.Len())
	for i := range out {
		out[i] = s.At(i).Label
	}
	return out
}

func TestOpen_Empty(t *testing.T) {
	s := openStore(t)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, store.Item{}, s.At(0))
}

func TestSeed(t *testing.T) {
	s := openStore(t, store.WithPageSize(7))
	var got []source.Mutation
	cancel := s.Subscribe(func(m source.Mutation) { got = append(got, m) })
	defer cancel()

	ctx := context.Background()
	require.NoError(t, s.Seed(ctx, generate(50)))
	require.NoError(t, s.Seed(ctx, generate(20)))

	assert.Equal(t, 20, s.Len())
	assert.Equal(t, store.Item{Label: "row 19", Height: 2}, s.At(19))
	assert.Equal(t, store.Item{Label: "row 8", Height: 3}, s.At(8))
	assert.Equal(t, []source.Mutation{
		{Start: 0, Removed: 0, Added: 50},
		{Start: 0, Removed: 50, Added: 20},
	}, got)
}

func TestSeed_RejectsBadHeight(t *testing.T) {
	s := openStore(t)
	err := s.Seed(context.Background(), []store.Item{{Label: "x", Height: math.NaN()}})
	assert.ErrorIs(t, err, store.ErrInvalidHeight)
	assert.Equal(t, 0, s.Len())
}

func TestInsertAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, store.WithPageSize(2))
	require.NoError(t, s.Seed(ctx, []store.Item{{Label: "a"}, {Label: "b"}, {Label: "c"}}))

	var got []source.Mutation
	cancel := s.Subscribe(func(m source.Mutation) { got = append(got, m) })
	defer cancel()

	// Warm the cache so the writes must invalidate it.
	require.Equal(t, []string{"a", "b", "c"}, labelsOf(s))

	require.NoError(t, s.Insert(ctx, 1, store.Item{Label: "x"}, store.Item{Label: "y"}))
	assert.Equal(t, []string{"a", "x", "y", "b", "c"}, labelsOf(s))

	require.NoError(t, s.Insert(ctx, 5, store.Item{Label: "z"}))
	assert.Equal(t, []string{"a", "x", "y", "b", "c", "z"}, labelsOf(s))

	require.NoError(t, s.Delete(ctx, 0, 3))
	assert.Equal(t, []string{"b", "c", "z"}, labelsOf(s))

	assert.Equal(t, []source.Mutation{
		{Start: 1, Added: 2},
		{Start: 5, Added: 1},
		{Start: 0, Removed: 3},
	}, got)
}

func TestWrites_OutOfRange(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	require.NoError(t, s.Seed(ctx, generate(3)))

	assert.ErrorIs(t, s.Insert(ctx, 4, store.Item{Label: "x"}), store.ErrOutOfRange)
	assert.ErrorIs(t, s.Insert(ctx, -1, store.Item{Label: "x"}), store.ErrOutOfRange)
	assert.ErrorIs(t, s.Delete(ctx, 2, 2), store.ErrOutOfRange)
	assert.NoError(t, s.Delete(ctx, 0, 0))
	assert.NoError(t, s.Insert(ctx, 0))
	assert.Equal(t, 3, s.Len())
}

func TestReopenKeepsItems(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "items.db")

	s, err := store.Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Seed(ctx, generate(10)))
	require.NoError(t, s.Close())

	s, err = store.Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, 10, s.Len())
	assert.Equal(t, "row 9", s.At(9).Label)
	assert.Equal(t, path, s.Path())
}

func TestHeightFunc(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, store.WithPageSize(4))
	require.NoError(t, s.Seed(ctx, generate(40)))

	fn := s.HeightFunc()
	for i := range 40 {
		assert.InDelta(t, float64(1+i%3), fn(i), 0, "index %d", i)
	}
	assert.Zero(t, fn(40))
}

func TestAt_EvictsPages(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, store.WithPageSize(2), store.WithMaxPages(3))
	require.NoError(t, s.Seed(ctx, generate(40)))

	// Twenty pages through a three-page cache, forwards then backwards.
	for i := range 40 {
		require.Equal(t, fmt.Sprintf("row %d", i), s.At(i).Label)
	}
	for i := 39; i >= 0; i-- {
		got := s.At(i)
		assert.Equal(t, fmt.Sprintf("row %d", i), got.Label)
		assert.InDelta(t, float64(1+i%3), got.Height, 0)
	}

	// Pages cached before a write must not survive it.
	require.NoError(t, s.Delete(ctx, 0, 1))
	assert.Equal(t, "row 1", s.At(0).Label)
	assert.Equal(t, "row 39", s.At(38).Label)
}

func TestSeed_ZeroHeightUsesDefault(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Seed(context.Background(), []store.Item{{Label: "a"}, {Label: "b", Height: 4}}))
	assert.InDelta(t, 1.0, s.At(0).Height, 0)
	assert.InDelta(t, 4.0, s.At(1).Height, 0)
}

func TestInsert_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	const writers, perWriter = 8, 5
	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWriter {
				assert.NoError(t, s.Insert(ctx, s.Len(), store.Item{Label: fmt.Sprintf("w%d-%d", w, i), Height: 1}))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, s.Len())
	seen := make(map[string]bool, writers*perWriter)
	for _, label := range labelsOf(s) {
		seen[label] = true
	}
	assert.Len(t, seen, writers*perWriter)
}
