package list_test

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/virtlist/internal/layout"
	"github.com/rshade/virtlist/internal/listview"
	"github.com/rshade/virtlist/internal/source"
	"github.com/rshade/virtlist/internal/tui/list"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func identity(s string) string { return s }

func labels(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

func newModel(t *testing.T, n, width, height int, opts ...list.Option) (*list.Model[string], *source.Slice[string]) {
	t.Helper()
	src := source.NewSlice(labels("item ", n)...)
	m, err := list.NewModel[string](src, width, height, identity, opts...)
	require.NoError(t, err)
	return m, src
}

func viewLines(m *list.Model[string]) []string {
	return strings.Split(ansiRegex.ReplaceAllString(m.View(), ""), "\n")
}

func TestModel_Navigation(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		msg      tea.KeyMsg
		expected int
	}{
		{"down arrow", 0, tea.KeyMsg{Type: tea.KeyDown}, 1},
		{"up arrow", 5, tea.KeyMsg{Type: tea.KeyUp}, 4},
		{"j moves down", 0, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}, 1},
		{"k moves up", 5, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}, 4},
		{"up at top stays", 0, tea.KeyMsg{Type: tea.KeyUp}, 0},
		{"down at bottom stays", 99, tea.KeyMsg{Type: tea.KeyDown}, 99},
		{"page down", 10, tea.KeyMsg{Type: tea.KeyPgDown}, 30},
		{"page up", 50, tea.KeyMsg{Type: tea.KeyPgUp}, 30},
		{"page up clamps", 5, tea.KeyMsg{Type: tea.KeyPgUp}, 0},
		{"page down clamps", 90, tea.KeyMsg{Type: tea.KeyPgDown}, 99},
		{"home", 42, tea.KeyMsg{Type: tea.KeyHome}, 0},
		{"end", 5, tea.KeyMsg{Type: tea.KeyEnd}, 99},
		{"G jumps to end", 5, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}}, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newModel(t, 100, 80, 20)
			m.SetSelected(tt.start)

			_, cmd := m.Update(tt.msg)

			assert.Nil(t, cmd)
			assert.Equal(t, tt.expected, m.Selected())
		})
	}
}

func TestModel_EndScrollsToLastItem(t *testing.T) {
	m, _ := newModel(t, 100, 80, 20)

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnd})

	_, y := m.Controller().Scroll()
	assert.InDelta(t, 80.0, y, 1e-9)
	assert.Equal(t, layout.Range{Start: 79, Count: 21}, m.Controller().Window())

	lines := viewLines(m)
	require.Len(t, lines, 20)
	assert.Contains(t, lines[0], "item 80")
	assert.Contains(t, lines[19], "item 99")

	item, ok := m.SelectedItem()
	require.True(t, ok)
	assert.Equal(t, "item 99", item)
}

func TestModel_ViewShowsViewportOnly(t *testing.T) {
	m, _ := newModel(t, 1000, 40, 10)

	lines := viewLines(m)
	require.Len(t, lines, 10)
	for i, line := range lines {
		assert.Contains(t, line, fmt.Sprintf("item %d", i))
	}
	assert.LessOrEqual(t, m.LiveCells(), 11)
}

func TestModel_LiveCellsStayBounded(t *testing.T) {
	m, _ := newModel(t, 10000, 80, 20)

	for range 500 {
		_, _ = m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
		assert.LessOrEqual(t, m.LiveCells(), 21)
	}
	assert.Equal(t, 10000-1, m.Selected())
}

func TestModel_WindowSizeMsgResizes(t *testing.T) {
	m, _ := newModel(t, 100, 80, 20)
	require.Equal(t, 21, m.LiveCells())

	_, cmd := m.Update(tea.WindowSizeMsg{Width: 60, Height: 10})

	assert.Nil(t, cmd)
	assert.Equal(t, 60, m.Width())
	assert.Equal(t, 10, m.Height())
	assert.Equal(t, 11, m.LiveCells())
	assert.Len(t, viewLines(m), 10)
}

func TestModel_ZeroSizeRendersNothing(t *testing.T) {
	m, _ := newModel(t, 100, 0, 0)
	assert.Empty(t, m.View())
	assert.Equal(t, 0, m.LiveCells())
}

func TestModel_EmptyPlaceholder(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		m, _ := newModel(t, 0, 40, 5)
		lines := viewLines(m)
		require.Len(t, lines, 5)
		assert.Contains(t, lines[0], "No items")

		_, ok := m.SelectedItem()
		assert.False(t, ok)
	})

	t.Run("custom", func(t *testing.T) {
		m, _ := newModel(t, 0, 40, 5, list.WithPlaceholder("nothing here"))
		assert.Contains(t, m.View(), "nothing here")
	})

	t.Run("keys on empty list", func(t *testing.T) {
		m, _ := newModel(t, 0, 40, 5)
		_, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
		assert.Equal(t, 0, m.Selected())
	})
}

func TestModel_FollowsContentMutations(t *testing.T) {
	m, src := newModel(t, 100, 80, 20)
	stop := listview.Watch(m.Controller(), src)
	defer stop()

	m.SetSelected(99)
	require.NoError(t, src.Remove(50, 50))
	m.Sync()

	assert.Equal(t, 49, m.Selected())
	_, y := m.Controller().Scroll()
	assert.InDelta(t, 30.0, y, 1e-9)

	lines := viewLines(m)
	assert.Contains(t, lines[19], "item 49")

	src.Set(nil)
	m.Sync()
	assert.Contains(t, m.View(), "No items")

	src.Append("fresh")
	m.Sync()
	assert.Contains(t, viewLines(m)[0], "fresh")
}

func TestModel_Grid(t *testing.T) {
	src := source.NewSlice(labels("i", 10)...)
	m, err := list.NewModel[string](src, 40, 5, identity, list.WithLayout(layout.Config{
		Rows:        layout.FixedHeight(1),
		ItemWidth:   10,
		PaddingRows: 1,
	}))
	require.NoError(t, err)
	require.Equal(t, 4, m.Controller().Columns())

	lines := viewLines(m)
	assert.Equal(t, []string{"i0", "i1", "i2", "i3"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"i4", "i5", "i6", "i7"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"i8", "i9"}, strings.Fields(lines[2]))

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 4, m.Selected())

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 5, m.Selected())

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 9, m.Selected())

	// No item below 9; the selection stays.
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 9, m.Selected())
}

func TestModel_StatusLine(t *testing.T) {
	m, _ := newModel(t, 100, 80, 10, list.WithStatusLine())

	lines := viewLines(m)
	require.Len(t, lines, 10)
	assert.Contains(t, lines[9], "1/100")
	assert.Contains(t, lines[9], "window [0,10)")
	assert.Contains(t, lines[8], "item 8")

	m.SetSelected(41)
	assert.Contains(t, viewLines(m)[9], "42/100")
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newModel(t, 10, 80, 20)
			_, cmd := m.Update(tt.msg)
			require.NotNil(t, cmd)
			_, ok := cmd().(tea.QuitMsg)
			assert.True(t, ok)
		})
	}
}

func TestModel_CustomKeyMap(t *testing.T) {
	keys := list.DefaultKeyMap()
	keys.Down.SetKeys("n")
	m, _ := newModel(t, 10, 80, 20, list.WithKeyMap(keys))

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.Selected())

	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.Equal(t, 1, m.Selected())
}

func TestModel_TruncatesWideItems(t *testing.T) {
	src := source.NewSlice(strings.Repeat("x", 100))
	m, err := list.NewModel[string](src, 20, 3, identity)
	require.NoError(t, err)

	lines := viewLines(m)
	assert.Contains(t, lines[0], "…")
	assert.LessOrEqual(t, len([]rune(lines[0])), 20)
}
