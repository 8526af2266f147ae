package list

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"

	"github.com/rshade/virtlist/internal/layout"
	"github.com/rshade/virtlist/internal/listview"
	"github.com/rshade/virtlist/internal/recycle"
)

// defaultPlaceholder is shown when the list has no items.
const defaultPlaceholder = "No items"

// Styles used by the list view.
var (
	selectedStyle = lipgloss.NewStyle().Reverse(true).Bold(true) //nolint:gochecknoglobals // Shared style
	normalStyle   = lipgloss.NewStyle()                          //nolint:gochecknoglobals // Shared style
	mutedStyle    = lipgloss.NewStyle().Faint(true).Italic(true) //nolint:gochecknoglobals // Shared style
)

type settings struct {
	layout      layout.Config
	keys        KeyMap
	logger      zerolog.Logger
	status      bool
	placeholder string
}

// Option configures a Model.
type Option func(*settings)

// WithLayout takes row heights, item width, padding and bounds from cfg. The
// viewport size always comes from the terminal.
func WithLayout(cfg layout.Config) Option {
	return func(s *settings) { s.layout = cfg }
}

// WithKeyMap replaces the default key bindings.
func WithKeyMap(keys KeyMap) Option {
	return func(s *settings) { s.keys = keys }
}

// WithLogger passes logger to the controller.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithStatusLine reserves the last terminal row for a position summary.
func WithStatusLine() Option {
	return func(s *settings) { s.status = true }
}

// WithPlaceholder sets the text shown for an empty list.
func WithPlaceholder(text string) Option {
	return func(s *settings) { s.placeholder = text }
}

// Model is a Bubble Tea model showing content through a listview.Controller.
type Model[T any] struct {
	ctrl     *listview.Controller[T, *Cell]
	cells    *Cells[T]
	settings settings

	selected int
	width    int
	height   int
	empty    bool
}

// NewModel returns a model of width by height terminal cells.
func NewModel[T any](
	content recycle.Content[T],
	width, height int,
	fn RenderFunc[T],
	opts ...Option,
) (*Model[T], error) {
	s := settings{
		layout: layout.Config{
			Rows:        layout.FixedHeight(1),
			PaddingRows: layout.DefaultPaddingRows,
		},
		keys:        DefaultKeyMap(),
		logger:      zerolog.Nop(),
		placeholder: defaultPlaceholder,
	}
	for _, opt := range opts {
		opt(&s)
	}

	m := &Model[T]{
		cells:    NewCells(fn),
		settings: s,
		width:    max(width, 0),
		height:   max(height, 0),
	}

	cfg := s.layout
	cfg.ViewportWidth = float64(m.width)
	cfg.ViewportHeight = float64(m.listHeight())

	ctrl, err := listview.New(cfg, content, recycle.Factory[T, *Cell](m.cells),
		listview.WithLogger(s.logger),
		listview.WithEmptyListener(func(empty bool) { m.empty = empty }),
	)
	if err != nil {
		return nil, fmt.Errorf("creating list controller: %w", err)
	}
	m.ctrl = ctrl
	return m, nil
}

// Init implements tea.Model.
func (m *Model[T]) Init() tea.Cmd {
	return nil
}

// Update handles keyboard and resize messages, then runs any pending pass.
func (m *Model[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.settings.keys.Quit) {
			return m, tea.Quit
		}
		m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = max(msg.Width, 0)
		m.height = max(msg.Height, 0)
		if err := m.ctrl.Resize(float64(m.width), float64(m.listHeight())); err != nil {
			m.settings.logger.Warn().Err(err).Msg("ignoring window size")
		}
	}

	m.Sync()
	return m, nil
}

// Sync clamps the selection to the content, scrolls it into view and runs
// the pending pass. Update calls it for every message; hosts that mutate the
// content outside Update call it themselves.
func (m *Model[T]) Sync() {
	m.clampSelection()
	m.ensureVisible()
	m.ctrl.Flush()
}

func (m *Model[T]) handleKeyMsg(msg tea.KeyMsg) {
	n := m.ctrl.Content().Len()
	if n == 0 {
		return
	}
	stride := max(m.ctrl.TotalColumns(), 1)

	switch {
	case key.Matches(msg, m.settings.keys.Up):
		if m.selected-stride >= 0 {
			m.selected -= stride
		}
	case key.Matches(msg, m.settings.keys.Down):
		if m.selected+stride < n {
			m.selected += stride
		}
	case key.Matches(msg, m.settings.keys.Left):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.settings.keys.Right):
		if m.selected < n-1 {
			m.selected++
		}
	case key.Matches(msg, m.settings.keys.PageUp):
		m.selected = max(m.selected-m.pageSize(stride), 0)
	case key.Matches(msg, m.settings.keys.PageDown):
		m.selected = min(m.selected+m.pageSize(stride), n-1)
	case key.Matches(msg, m.settings.keys.Home):
		m.selected = 0
	case key.Matches(msg, m.settings.keys.End):
		m.selected = n - 1
	}
}

// pageSize is the number of items one screen advances.
func (m *Model[T]) pageSize(stride int) int {
	cfg := m.ctrl.Config()
	rows := 1
	if !cfg.Rows.Variable() && cfg.Rows.Fixed() > 0 {
		rows = max(int(cfg.ViewportHeight/cfg.Rows.Fixed()), 1)
	} else if cols := max(m.ctrl.Columns(), 1); m.ctrl.Window().Count/cols > cfg.PaddingRows {
		rows = m.ctrl.Window().Count/cols - cfg.PaddingRows
	}
	return rows * stride
}

func (m *Model[T]) clampSelection() {
	n := m.ctrl.Content().Len()
	switch {
	case n == 0 || m.selected < 0:
		m.selected = 0
	case m.selected >= n:
		m.selected = n - 1
	}
}

// ensureVisible scrolls the controller so the selected item is fully inside
// the viewport.
func (m *Model[T]) ensureVisible() {
	if m.ctrl.Content().Len() == 0 {
		return
	}
	cfg := m.ctrl.Config()
	pos := m.ctrl.Position(m.selected)
	itemHeight := cfg.Rows.HeightFor(m.selected)
	x, y := m.ctrl.Scroll()

	switch {
	case pos.Y < y:
		y = pos.Y
	case pos.Y+itemHeight > y+cfg.ViewportHeight:
		y = pos.Y + itemHeight - cfg.ViewportHeight
	}
	if iw := cfg.ItemWidth; iw > 0 && cfg.Bounded() {
		switch {
		case pos.X < x:
			x = pos.X
		case pos.X+iw > x+cfg.ViewportWidth:
			x = pos.X + iw - cfg.ViewportWidth
		}
	}
	m.ctrl.SetScroll(x, y)
}

// placed is a cell resolved to screen coordinates.
type placed struct {
	col      int
	text     string
	selected bool
}

// View renders the cells inside the viewport.
func (m *Model[T]) View() string {
	height := m.listHeight()
	if m.width == 0 || m.height == 0 {
		return ""
	}

	lines := make([]string, height)
	switch {
	case height == 0:
	case m.empty:
		lines[0] = mutedStyle.Render(runewidth.Truncate(m.settings.placeholder, m.width, "…"))
	default:
		m.renderCells(lines)
	}

	if m.settings.status {
		lines = append(lines, m.statusLine())
	}
	return strings.Join(lines, "\n")
}

func (m *Model[T]) renderCells(lines []string) {
	scrollX, scrollY := m.ctrl.Scroll()
	cellWidth := m.width
	if iw := int(m.ctrl.Config().ItemWidth); iw > 0 {
		cellWidth = iw
	}

	rows := make(map[int][]placed)
	for _, s := range m.ctrl.Slots() {
		c := s.Handle
		if !c.Live {
			continue
		}
		row := int(math.Floor(c.Pos.Y - scrollY))
		col := int(math.Floor(c.Pos.X - scrollX))
		if row < 0 || row >= len(lines) || col < 0 || col >= m.width {
			continue
		}
		rows[row] = append(rows[row], placed{col: col, text: c.Text, selected: c.Index == m.selected})
	}

	for row, cells := range rows {
		sort.Slice(cells, func(i, j int) bool { return cells[i].col < cells[j].col })

		var b strings.Builder
		cursor := 0
		for _, p := range cells {
			if p.col < cursor {
				continue
			}
			b.WriteString(strings.Repeat(" ", p.col-cursor))
			w := min(cellWidth, m.width-p.col)
			text := runewidth.FillRight(runewidth.Truncate(p.text, w, "…"), w)
			if p.selected {
				b.WriteString(selectedStyle.Render(text))
			} else {
				b.WriteString(normalStyle.Render(text))
			}
			cursor = p.col + w
		}
		lines[row] = b.String()
	}
}

func (m *Model[T]) statusLine() string {
	n := m.ctrl.Content().Len()
	w := m.ctrl.Window()
	text := fmt.Sprintf("%d/%d  window [%d,%d)  cells %d", min(m.selected+1, n), n, w.Start, w.End(n), m.cells.Live())
	return mutedStyle.Render(runewidth.Truncate(text, m.width, "…"))
}

// listHeight is the number of terminal rows available to items.
func (m *Model[T]) listHeight() int {
	if m.settings.status {
		return max(m.height-1, 0)
	}
	return m.height
}

// Selected returns the selected item index.
func (m *Model[T]) Selected() int {
	return m.selected
}

// SetSelected selects index, capped to valid bounds, and scrolls it into view.
func (m *Model[T]) SetSelected(index int) {
	m.selected = index
	m.Sync()
}

// SelectedItem returns the selected item, or false for an empty list.
func (m *Model[T]) SelectedItem() (T, bool) {
	var zero T
	content := m.ctrl.Content()
	if m.selected < 0 || m.selected >= content.Len() {
		return zero, false
	}
	return content.At(m.selected), true
}

// Controller returns the controller driving the model.
func (m *Model[T]) Controller() *listview.Controller[T, *Cell] {
	return m.ctrl
}

// LiveCells returns the number of terminal cells currently allocated.
func (m *Model[T]) LiveCells() int {
	return m.cells.Live()
}

// Width returns the terminal width.
func (m *Model[T]) Width() int {
	return m.width
}

// Height returns the terminal height.
func (m *Model[T]) Height() int {
	return m.height
}
