package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/virtlist/internal/config"
	"github.com/rshade/virtlist/internal/logging"
	"github.com/rshade/virtlist/internal/store"
)

// NewSeedCmd creates the seed command, which fills a SQLite store with
// generated items for view --db.
func NewSeedCmd() *cobra.Command {
	var (
		dbPath      string
		count       int
		appendItems bool
		yes         bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill a SQLite item store with generated items",
		Long: `Writes generated items to a SQLite database. Item heights follow the list
configuration: row_heights are cycled when set, otherwise every item gets
row_height.

Replacing a non-empty store asks for confirmation when stdin is a terminal;
--yes skips the question.`,
		Example: `  # Replace the store contents with 50k items
  virtlist seed --db items.db --count 50000

  # Add 100 items at the end
  virtlist seed --db items.db --count 100 --append`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, dbPath, count, appendItems, yes)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "path of the SQLite database (required)")
	cmd.Flags().IntVar(&count, "count", 1000, "number of items to write")
	cmd.Flags().BoolVar(&appendItems, "append", false, "append instead of replacing the stored items")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "replace stored items without asking")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runSeed(cmd *cobra.Command, dbPath string, count int, appendItems, yes bool) error {
	if count < 0 {
		return errors.New("count must be >= 0")
	}
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	st, err := store.Open(ctx, dbPath, store.WithLogger(*log))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Str("db", dbPath).Msg("closing store")
		}
	}()

	first := 0
	if appendItems {
		first = st.Len()
	} else if n := st.Len(); n > 0 && !yes && isTerminal(os.Stdin) {
		p := message.NewPrinter(language.English)
		answer := Confirm(cmd.OutOrStdout(), cmd.InOrStdin(), p.Sprintf("Replace %d items in %s?", n, dbPath))
		if !answer.Accepted {
			cmd.Println("Aborted.")
			return nil
		}
	}
	items := seedItems(config.GetGlobalConfig().List, first, count)

	if appendItems {
		err = st.Insert(ctx, first, items...)
	} else {
		err = st.Seed(ctx, items)
	}
	if err != nil {
		return err
	}

	log.Debug().Str("db", dbPath).Int("count", count).Bool("append", appendItems).Msg("store seeded")
	p := message.NewPrinter(language.English)
	p.Fprintf(cmd.OutOrStdout(), "Seeded %d items into %s (%d total)\n", count, dbPath, st.Len())
	return nil
}

// seedItems generates count items numbered from first with heights taken
// from cfg.
func seedItems(cfg config.ListConfig, first, count int) []store.Item {
	height := func(int) float64 { return max(cfg.RowHeight, 1) }
	if len(cfg.RowHeights) > 0 {
		height = config.CycledHeights(cfg.RowHeights)
	}

	labels := itemLabels(first, count)
	items := make([]store.Item, count)
	for i, label := range labels {
		items[i] = store.Item{Label: label, Height: height(first + i)}
	}
	return items
}
