package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/virtlist/internal/config"
	"github.com/rshade/virtlist/internal/layout"
)

// tabPadding is the minimum column padding for tabwriter output.
const tabPadding = 2

// benchOptions holds the flags of the bench command.
type benchOptions struct {
	items    int
	steps    int
	parallel int
	only     []string
	output   string
}

// NewBenchCmd creates the bench command, which runs one scenario per layout
// mode concurrently and reports the cost of each scroll step.
func NewBenchCmd() *cobra.Command {
	var opts benchOptions

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark the engine across layout modes",
		Long: `Runs one headless scenario per layout mode (fixed, variable, grid, bounded and
mutating), each with its own list, concurrently. The geometry comes from the
list section of the configuration.`,
		Example: `  # Benchmark every mode with 100k items
  virtlist bench --count 100000

  # Only the variable-height and grid modes, as JSON
  virtlist bench --scenario variable,grid --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.items, "count", 100_000, "number of generated items per scenario")
	cmd.Flags().IntVar(&opts.steps, "steps", 1000, "number of scroll steps per scenario")
	cmd.Flags().IntVar(&opts.parallel, "parallel", runtime.NumCPU(), "maximum scenarios running at once")
	cmd.Flags().StringSliceVar(&opts.only, "scenario", nil, "scenarios to run (default all)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")

	return cmd
}

func runBench(cmd *cobra.Command, opts benchOptions) error {
	if opts.output != outputTable && opts.output != outputJSON {
		return fmt.Errorf("%w: %q", errBadOutput, opts.output)
	}
	if opts.items < 0 || opts.steps < 0 {
		return errors.New("count and steps must be >= 0")
	}

	cfg := config.GetGlobalConfig().List
	base, err := cfg.ToLayout()
	if err != nil {
		return fmt.Errorf("invalid list configuration: %w", err)
	}

	scenarios, err := selectScenarios(benchScenarios(cfg, base, opts), opts.only)
	if err != nil {
		return err
	}

	results := make([]scenarioResult, len(scenarios))

	g, gCtx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(opts.parallel, 1))
	for i, s := range scenarios {
		g.Go(func() error {
			r, runErr := s.run(gCtx)
			if runErr != nil {
				return runErr
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("running benchmarks: %w", err)
	}

	if opts.output == outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return renderBench(cmd.OutOrStdout(), results)
}

// benchScenarios derives one scenario per layout mode from the configured
// geometry.
func benchScenarios(cfg config.ListConfig, base layout.Config, opts benchOptions) []scenario {
	rowHeight := max(cfg.RowHeight, 1)
	itemWidth := max(base.ViewportWidth/4, 1)

	fixed := base
	fixed.Rows = layout.FixedHeight(rowHeight)
	fixed.BoundHeight = 0
	fixed.ItemWidth = 0

	variable := fixed
	if len(cfg.RowHeights) > 0 {
		variable.Rows = layout.VariableHeight(config.CycledHeights(cfg.RowHeights))
	} else {
		variable.Rows = layout.VariableHeight(config.CycledHeights([]float64{rowHeight, 2 * rowHeight, 3 * rowHeight}))
	}

	grid := fixed
	grid.ItemWidth = itemWidth

	bounded := grid
	bounded.BoundHeight = max(base.ViewportHeight, rowHeight)

	mk := func(name string, lc layout.Config, mutateEvery int) scenario {
		return scenario{
			Name:        name,
			Layout:      lc,
			Items:       opts.items,
			Steps:       opts.steps,
			Step:        defaultStep(lc, 0),
			MutateEvery: mutateEvery,
		}
	}
	return []scenario{
		mk("fixed", fixed, 0),
		mk("variable", variable, 0),
		mk("grid", grid, 0),
		mk("bounded", bounded, 0),
		mk("mutating", fixed, 10),
	}
}

// selectScenarios keeps the scenarios named in only, in their original order.
func selectScenarios(all []scenario, only []string) ([]scenario, error) {
	if len(only) == 0 {
		return all, nil
	}
	names := make([]string, len(all))
	for i, s := range all {
		names[i] = s.Name
	}
	for _, name := range only {
		if !slices.Contains(names, name) {
			return nil, fmt.Errorf("unknown scenario %q (available: %s)", name, strings.Join(names, ", "))
		}
	}
	var out []scenario
	for _, s := range all {
		if slices.Contains(only, s.Name) {
			out = append(out, s)
		}
	}
	return out, nil
}

func renderBench(w io.Writer, results []scenarioResult) error {
	p := message.NewPrinter(language.English)
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	p.Fprintln(tw, "SCENARIO\tITEMS\tSTEPS\tPASSES\tSKIPPED\tCREATED\tDESTROYED\tUPDATED\tPEAK SLOTS\tPER STEP")
	for _, r := range results {
		p.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.Name, r.Items, r.Steps, r.Passes, r.Skipped, r.Created, r.Destroyed, r.Updated, r.MaxLive, r.PerStep())
	}
	return tw.Flush()
}
