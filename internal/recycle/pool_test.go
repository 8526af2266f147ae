package recycle_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rshade/virtlist/internal/layout"
	"github.com/rshade/virtlist/internal/recycle"
	"github.com/rshade/virtlist/internal/render"
)

type items []string

func (s items) Len() int { return len(s) }
func (s items) At(index int) string { return s[index] }

func makeItems(n int) items {
	out := make(items, n)
	for i := range out {
		out[i] = fmt.Sprintf("item-%d", i)
	}
	return out
}

// rowsOf20 places index i at y = 20*i in a single column.
func rowsOf20(index int) layout.Position {
	return layout.Position{Y: float64(index) * 20}
}

func newPool(opts ...render.Option) (*recycle.Pool[string, *render.Unit[string]], *render.Recorder[string]) {
	rec := render.NewRecorder[string](opts...)
	return recycle.NewPool[string, *render.Unit[string]](rec), rec
}

func TestPool_GrowOnFirstPass(t *testing.T) {
	pool, rec := newPool()
	content := makeItems(1000)

	stats := pool.Reconcile(layout.Range{Start: 10, Count: 6}, content, rowsOf20, true)

	assert.Equal(t, 6, pool.Len())
	assert.Equal(t, 6, stats.Created)
	assert.Equal(t, 6, stats.Updated)
	assert.Equal(t, 6, rec.Live())

	for _, s := range pool.Slots() {
		assert.GreaterOrEqual(t, s.Index, 10)
		assert.Less(t, s.Index, 16)
		assert.Equal(t, s.Index%6, ordinalOf(t, pool, s.Handle))
		assert.Equal(t, content[s.Index], s.Handle.Item)
		assert.Equal(t, rowsOf20(s.Index), s.Pos)
	}
}

func TestPool_PureScrollReusesSlots(t *testing.T) {
	pool, rec := newPool()
	content := makeItems(1000)

	pool.Reconcile(layout.Range{Start: 0, Count: 6}, content, rowsOf20, true)
	before := pool.Slots()
	rec.Reset()

	stats := pool.Reconcile(layout.Range{Start: 1, Count: 6}, content, rowsOf20, false)

	assert.Equal(t, 0, stats.Churn())
	assert.Equal(t, 0, rec.Counts().Created)
	assert.Equal(t, 0, rec.Counts().Destroyed)
	// Only index 0 left the window; its slot now shows index 6.
	assert.Equal(t, 1, stats.Updated)

	after := pool.Slots()
	for i := range before {
		assert.Same(t, before[i].Handle, after[i].Handle, "slot %d changed identity", i)
	}
	assert.Equal(t, 6, after[0].Index)
}

func TestPool_ForceUpdatesEverySlot(t *testing.T) {
	pool, _ := newPool()
	content := makeItems(100)

	pool.Reconcile(layout.Range{Start: 0, Count: 6}, content, rowsOf20, true)
	content[3] = "changed"

	stats := pool.Reconcile(layout.Range{Start: 0, Count: 6}, content, rowsOf20, true)
	assert.Equal(t, 6, stats.Updated)
	assert.Equal(t, "changed", pool.Slots()[3].Handle.Item)
}

func TestPool_Shrink(t *testing.T) {
	pool, rec := newPool()
	content := makeItems(100)

	pool.Reconcile(layout.Range{Start: 0, Count: 10}, content, rowsOf20, true)
	stats := pool.Reconcile(layout.Range{Start: 0, Count: 4}, content, rowsOf20, true)

	assert.Equal(t, 4, pool.Len())
	assert.Equal(t, 6, stats.Destroyed)
	assert.Equal(t, 0, stats.Created)
	assert.Equal(t, 4, rec.Live())
}

func TestPool_ClampsToContent(t *testing.T) {
	pool, rec := newPool()

	pool.Reconcile(layout.Range{Start: 0, Count: 6}, makeItems(3), rowsOf20, true)
	assert.Equal(t, 3, pool.Len())

	stats := pool.Reconcile(layout.Range{Start: 0, Count: 6}, makeItems(0), rowsOf20, true)
	assert.Equal(t, 0, pool.Len())
	assert.Equal(t, 3, stats.Destroyed)
	assert.Equal(t, 0, rec.Live())
}

func TestPool_GrowExtendsPreviousTail(t *testing.T) {
	pool, rec := newPool(render.WithEvents())
	content := makeItems(100)

	pool.Reconcile(layout.Range{Start: 0, Count: 4}, content, rowsOf20, true)
	rec.Reset()
	pool.Reconcile(layout.Range{Start: 0, Count: 6}, content, rowsOf20, true)

	var created []int
	for _, e := range rec.Events() {
		if e.Op == render.OpCreate {
			created = append(created, e.Index)
		}
	}
	assert.Equal(t, []int{4, 5}, created)
}

func TestPool_ReplacesOnKindChange(t *testing.T) {
	headers := map[int]bool{0: true}
	pool, rec := newPool(render.WithKinds(func(i int) string {
		if headers[i] {
			return "header"
		}
		return "row"
	}))
	content := makeItems(100)

	pool.Reconcile(layout.Range{Start: 0, Count: 4}, content, rowsOf20, true)
	first := pool.Slots()[0]
	require.Equal(t, "header", first.Kind)

	rec.Reset()
	// Index 4 maps to ordinal 0, which held the header unit.
	stats := pool.Reconcile(layout.Range{Start: 1, Count: 4}, content, rowsOf20, false)

	assert.Equal(t, 1, stats.Replaced)
	assert.Equal(t, 1, rec.Counts().Created)
	assert.Equal(t, 1, rec.Counts().Destroyed)
	assert.Equal(t, 4, pool.Len())

	replaced := pool.Slots()[0]
	assert.Equal(t, "row", replaced.Kind)
	assert.Equal(t, 4, replaced.Index)
	assert.NotSame(t, first.Handle, replaced.Handle)
}

func TestPool_Reassign(t *testing.T) {
	pool, _ := newPool()
	content := makeItems(100)

	pool.Reconcile(layout.Range{Start: 3, Count: 4}, content, rowsOf20, true)
	// Ordinals hold indices 4,5,6,3; position order is ordinal 3,0,1,2.
	stats := pool.Reassign(3, content, rowsOf20)
	assert.Equal(t, 4, stats.Updated)

	slots := pool.Slots()
	assert.Equal(t, 3, slots[3].Index)
	assert.Equal(t, 4, slots[0].Index)
	assert.Equal(t, 6, slots[2].Index)

	// Indices past the content are left untouched.
	stats = pool.Reassign(98, content, rowsOf20)
	assert.Equal(t, 2, stats.Updated)
}

func TestPool_CloseIsTerminal(t *testing.T) {
	pool, rec := newPool()
	content := makeItems(100)

	pool.Reconcile(layout.Range{Start: 0, Count: 5}, content, rowsOf20, true)
	stats := pool.Close()
	assert.Equal(t, 5, stats.Destroyed)
	assert.True(t, pool.Closed())
	assert.Equal(t, 0, rec.Live())

	rec.Reset()
	assert.Equal(t, recycle.Stats{}, pool.Reconcile(layout.Range{Start: 0, Count: 5}, content, rowsOf20, true))
	assert.Equal(t, recycle.Stats{}, pool.Reassign(0, content, rowsOf20))
	assert.Equal(t, recycle.Stats{}, pool.Close())
	assert.Equal(t, render.Counts{}, rec.Counts())
}

func TestPool_SizeMatchesWindow(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pool, rec := newPool()
		steps := rapid.IntRange(1, 30).Draw(t, "steps")

		for i := range steps {
			n := rapid.IntRange(0, 300).Draw(t, fmt.Sprintf("n%d", i))
			count := rapid.IntRange(0, 40).Draw(t, fmt.Sprintf("count%d", i))
			start := rapid.IntRange(0, max(n-count, 0)).Draw(t, fmt.Sprintf("start%d", i))
			r := layout.Range{Start: start, Count: count}

			pool.Reconcile(r, makeItems(n), rowsOf20, rapid.Bool().Draw(t, fmt.Sprintf("force%d", i)))

			want := min(count, n)
			if pool.Len() != want || rec.Live() != want {
				t.Fatalf("pool=%d live=%d want %d", pool.Len(), rec.Live(), want)
			}
			seen := make(map[int]bool)
			for _, s := range pool.Slots() {
				if s.Index < start || s.Index >= start+want || seen[s.Index] {
					t.Fatalf("slot index %d outside window [%d,%d) or duplicated", s.Index, start, start+want)
				}
				seen[s.Index] = true
			}
		}
	})
}

func ordinalOf(t *testing.T, pool *recycle.Pool[string, *render.Unit[string]], h *render.Unit[string]) int {
	t.Helper()
	for i, s := range pool.Slots() {
		if s.Handle == h {
			return i
		}
	}
	t.Fatalf("handle %s not in pool", h.ID)
	return -1
}
