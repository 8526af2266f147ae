package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rshade/virtlist/internal/layout"
	"github.com/rshade/virtlist/internal/listview"
	"github.com/rshade/virtlist/internal/logging"
	"github.com/rshade/virtlist/internal/render"
	"github.com/rshade/virtlist/internal/source"
)

// scenario is a scripted run of the engine: a headless controller over
// generated items scrolled Steps times by Step units, optionally inserting an
// item at the window start every MutateEvery steps.
type scenario struct {
	Name        string
	Layout      layout.Config
	Items       int
	Steps       int
	Step        float64
	MutateEvery int
	Events      bool
}

// scenarioResult summarizes one scenario run.
type scenarioResult struct {
	Name        string        `json:"name"`
	Items       int           `json:"items"`
	Steps       int           `json:"steps"`
	Passes      int           `json:"passes"`
	Skipped     int           `json:"skipped"`
	Created     int           `json:"created"`
	Destroyed   int           `json:"destroyed"`
	Replaced    int           `json:"replaced"`
	Updated     int           `json:"updated"`
	Mutations   int           `json:"mutations"`
	MaxLive     int           `json:"max_live"`
	FinalWindow layout.Range  `json:"final_window"`
	Elapsed     time.Duration `json:"elapsed_ns"`

	events []render.Event
}

// PerStep returns the mean wall time per scroll step.
func (r scenarioResult) PerStep() time.Duration {
	if r.Steps == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Steps)
}

// axis returns the scrolling axis: bounded layouts scroll horizontally.
func (s scenario) axis() listview.Axis {
	if s.Layout.Bounded() {
		return listview.AxisHorizontal
	}
	return listview.AxisVertical
}

// run executes the scenario. It stops early when ctx is cancelled.
func (s scenario) run(ctx context.Context) (scenarioResult, error) {
	log := logging.FromContext(ctx).With().Str("scenario", s.Name).Logger()
	result := scenarioResult{Name: s.Name, Items: s.Items}

	src := source.NewSlice(itemLabels(0, s.Items)...)
	recOpts := []render.Option{render.WithLogger(log)}
	if s.Events {
		recOpts = append(recOpts, render.WithEvents())
	}
	rec := render.NewRecorder[string](recOpts...)

	ctrl, err := listview.New[string, *render.Unit[string]](s.Layout, src, rec, listview.WithLogger(log))
	if err != nil {
		return result, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	defer ctrl.Destroy()
	stop := listview.Watch(ctrl, src)
	defer stop()

	result.MaxLive = rec.Live()
	horizontal := s.axis() == listview.AxisHorizontal
	start := time.Now()

	for i := range s.Steps {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if s.MutateEvery > 0 && i > 0 && i%s.MutateEvery == 0 {
			if err := src.Insert(ctrl.Window().Start, fmt.Sprintf("inserted %d", i)); err != nil {
				return result, fmt.Errorf("scenario %s: inserting at step %d: %w", s.Name, i, err)
			}
			result.Mutations++
		}

		var moved bool
		if horizontal {
			moved = ctrl.ScrollBy(s.Step, 0)
		} else {
			moved = ctrl.ScrollBy(0, s.Step)
		}
		if !moved {
			ctrl.SetScroll(0, 0)
		}
		ctrl.Flush()

		result.Steps++
		result.MaxLive = max(result.MaxLive, rec.Live())
	}

	result.Elapsed = time.Since(start)
	stats := ctrl.Stats()
	result.Passes = stats.Passes
	result.Skipped = stats.Skipped
	result.Created = stats.Created
	result.Destroyed = stats.Destroyed
	result.Replaced = stats.Replaced
	result.Updated = stats.Updated
	result.FinalWindow = ctrl.Window()
	result.events = append(result.events, rec.Events()...)

	log.Debug().
		Int("steps", result.Steps).
		Int("passes", result.Passes).
		Int("max_live", result.MaxLive).
		Dur("elapsed", result.Elapsed).
		Msg("scenario finished")
	return result, nil
}

// itemLabels returns n labels numbered from first.
func itemLabels(first, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("item %d", first+i)
	}
	return out
}
