package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rshade/virtlist/internal/config"
	"github.com/rshade/virtlist/internal/layout"
)

// Output formats shared by simulate and bench.
const (
	outputTable = "table"
	outputJSON  = "json"
)

// errBadOutput is returned for an unknown --output value.
var errBadOutput = errors.New("unsupported output format")

// simulateOptions holds the flags of the simulate command.
type simulateOptions struct {
	items       int
	steps       int
	step        float64
	mutateEvery int
	events      bool
	output      string
}

// NewSimulateCmd creates the simulate command, which replays a scroll script
// against a headless list and reports how the slot pool behaved.
func NewSimulateCmd() *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay a scroll script against a headless list",
		Long: `Runs the windowing engine against generated items with a recording renderer.
The list is scrolled --steps times by --step units (a third of the viewport by
default), wrapping to the top at the end. With --mutate-every an item is
inserted at the window start every N steps.

The report shows reconciliation passes, skipped scrolls, and the create,
destroy, replace and update calls the engine made.`,
		Example: `  # Scroll 10k items 500 times
  virtlist simulate --count 10000 --steps 500

  # Insert into the visible window every 10 steps and print the call trace
  virtlist simulate --count 200 --steps 40 --mutate-every 10 --events`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.items, "count", 1000, "number of generated items")
	cmd.Flags().IntVar(&opts.steps, "steps", 200, "number of scroll steps")
	cmd.Flags().Float64Var(&opts.step, "step", 0, "scroll distance per step (default a third of the viewport)")
	cmd.Flags().IntVar(&opts.mutateEvery, "mutate-every", 0, "insert an item at the window start every N steps (0 disables)")
	cmd.Flags().BoolVar(&opts.events, "events", false, "print every renderer call")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "output format: table or json")

	return cmd
}

func runSimulate(cmd *cobra.Command, opts simulateOptions) error {
	if opts.output != outputTable && opts.output != outputJSON {
		return fmt.Errorf("%w: %q", errBadOutput, opts.output)
	}
	if opts.items < 0 || opts.steps < 0 || opts.mutateEvery < 0 {
		return errors.New("count, steps and mutate-every must be >= 0")
	}

	lc, err := config.GetGlobalConfig().List.ToLayout()
	if err != nil {
		return fmt.Errorf("invalid list configuration: %w", err)
	}

	s := scenario{
		Name:        "simulate",
		Layout:      lc,
		Items:       opts.items,
		Steps:       opts.steps,
		Step:        defaultStep(lc, opts.step),
		MutateEvery: opts.mutateEvery,
		Events:      opts.events,
	}
	result, err := s.run(cmd.Context())
	if err != nil {
		return err
	}

	if opts.output == outputJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	renderSimulation(cmd.OutOrStdout(), result, opts.events)
	return nil
}

// defaultStep returns step, or a third of the viewport along the scroll axis.
func defaultStep(cfg layout.Config, step float64) float64 {
	if step > 0 {
		return step
	}
	extent := cfg.ViewportHeight
	if cfg.Bounded() {
		extent = cfg.ViewportWidth
	}
	return max(extent/3, 1)
}

func renderSimulation(w io.Writer, r scenarioResult, events bool) {
	p := message.NewPrinter(language.English)

	if events {
		for _, e := range r.events {
			p.Fprintf(w, "%-8s %s index=%d pos=(%.1f,%.1f)\n", e.Op, e.Handle, e.Index, e.Pos.X, e.Pos.Y)
		}
		p.Fprintln(w)
	}

	p.Fprintf(w, "Items:        %d\n", r.Items)
	p.Fprintf(w, "Steps:        %d\n", r.Steps)
	p.Fprintf(w, "Mutations:    %d\n", r.Mutations)
	p.Fprintf(w, "Passes:       %d (%d skipped)\n", r.Passes, r.Skipped)
	p.Fprintf(w, "Created:      %d\n", r.Created)
	p.Fprintf(w, "Destroyed:    %d\n", r.Destroyed)
	p.Fprintf(w, "Replaced:     %d\n", r.Replaced)
	p.Fprintf(w, "Updated:      %d\n", r.Updated)
	p.Fprintf(w, "Peak slots:   %d\n", r.MaxLive)
	p.Fprintf(w, "Final window: [%d, %d)\n", r.FinalWindow.Start, r.FinalWindow.End(r.Items+r.Mutations))
}
