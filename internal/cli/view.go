package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/virtlist/internal/config"
	"github.com/rshade/virtlist/internal/layout"
	"github.com/rshade/virtlist/internal/listview"
	"github.com/rshade/virtlist/internal/logging"
	"github.com/rshade/virtlist/internal/recycle"
	"github.com/rshade/virtlist/internal/source"
	"github.com/rshade/virtlist/internal/store"
	"github.com/rshade/virtlist/internal/tui/list"
)

// errNotTerminal is returned when view runs without a terminal on stdout.
var errNotTerminal = errors.New("view requires an interactive terminal")

// viewContent is a content source the view can watch for mutations.
type viewContent interface {
	recycle.Content[store.Item]
	source.Observable
}

// NewViewCmd creates the view command, which browses a list in the terminal.
func NewViewCmd() *cobra.Command {
	var (
		dbPath string
		count  int
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse a virtualized list in the terminal",
		Long: `Opens a full-screen list over generated items, or over a SQLite store
written by "virtlist seed". Only the rows inside the terminal (plus the padding
rows) are ever rendered.

Keys: up/down or j/k move, pgup/pgdown page, home/end or g/G jump, q quits.`,
		Example: `  # Browse one million generated items
  virtlist view --count 1000000

  # Browse a seeded store; item heights come from the store
  virtlist view --db items.db`,
		Annotations: map[string]string{annotationFullScreen: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd, dbPath, count)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite store to browse instead of generated items")
	cmd.Flags().IntVar(&count, "count", 10_000, "number of generated items")

	return cmd
}

func runView(cmd *cobra.Command, dbPath string, count int) error {
	if !isTerminal(os.Stdout) {
		return errNotTerminal
	}
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	lc, err := config.GetGlobalConfig().List.ToLayout()
	if err != nil {
		return fmt.Errorf("invalid list configuration: %w", err)
	}

	content, closeContent, err := openViewContent(ctx, dbPath, count, &lc)
	if err != nil {
		return err
	}
	defer closeContent()

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = int(lc.ViewportWidth), int(lc.ViewportHeight)
	}

	m, err := list.NewModel[store.Item](content, width, height,
		func(it store.Item) string { return it.Label },
		list.WithLayout(lc),
		list.WithLogger(*log),
		list.WithStatusLine(),
	)
	if err != nil {
		return err
	}
	stop := listview.Watch(m.Controller(), content)
	defer stop()
	defer m.Controller().Destroy()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running list view: %w", err)
	}
	return nil
}

// openViewContent opens the store at dbPath, or generates count items when
// dbPath is empty. A store supplies per-item heights unless the layout is
// bounded, which needs fixed rows.
func openViewContent(ctx context.Context, dbPath string, count int, lc *layout.Config) (viewContent, func(), error) {
	log := logging.FromContext(ctx)

	if dbPath == "" {
		if count < 0 {
			return nil, nil, errors.New("count must be >= 0")
		}
		items := seedItems(config.GetGlobalConfig().List, 0, count)
		return source.NewSlice(items...), func() {}, nil
	}

	st, err := store.Open(ctx, dbPath, store.WithLogger(*log))
	if err != nil {
		return nil, nil, err
	}
	if !lc.Bounded() {
		lc.Rows = layout.VariableHeight(st.HeightFunc())
	}
	closeStore := func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("db", dbPath).Msg("closing store")
		}
	}
	return st, closeStore, nil
}
