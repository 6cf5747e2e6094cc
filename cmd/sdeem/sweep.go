package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/LAPKB/ode-solvers/internal/config"
	"github.com/LAPKB/ode-solvers/internal/optim"
	"github.com/LAPKB/ode-solvers/internal/viz"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// objectives score an ensemble outcome for a parameter sweep.
var objectives = map[string]func(o *outcome) (float64, error){
	"final_mean":     func(o *outcome) (float64, error) { return o.summary.Final.Mean, nil },
	"final_variance": func(o *outcome) (float64, error) { return o.summary.Final.Variance, nil },
	"mean_error": func(o *outcome) (float64, error) {
		if o.cmp == nil {
			return 0, errors.Errorf("model %s has no analytic mean", o.proto.Name())
		}
		return o.cmp.FinalAbsError, nil
	},
	"max_mean_error": func(o *outcome) (float64, error) {
		if o.cmp == nil {
			return 0, errors.Errorf("model %s has no analytic mean", o.proto.Name())
		}
		return o.cmp.MaxAbsError, nil
	},
	"stability":       func(o *outcome) (float64, error) { return o.metrics["stability"], nil },
	"max_abs":         func(o *outcome) (float64, error) { return o.metrics["max_abs"], nil },
	"invalid_samples": func(o *outcome) (float64, error) { return o.metrics["invalid_samples"], nil },
}

func objectiveNames() []string {
	names := make([]string, 0, len(objectives))
	for name := range objectives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sweepParams(cmd *cobra.Command, args []string) error {
	model := args[0]
	logger := newLogger()

	score, ok := objectives[objective]
	if !ok {
		return errors.Errorf("unknown objective %q (available: %v)", objective, objectiveNames())
	}
	if len(grid) == 0 {
		return errors.New("at least one --grid axis is required")
	}

	names := make([]string, len(grid))
	ranges := make([][]float64, len(grid))
	for i, axis := range grid {
		var err error
		if names[i], ranges[i], err = optim.ParseAxis(axis); err != nil {
			return err
		}
	}
	search, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	base, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	level.Info(logger).Log("msg", "sweeping", "model", model, "points", search.Size(), "objective", objective)

	evaluate := func(ctx context.Context, point map[string]float64) (float64, error) {
		cfg := withParams(base, point)
		o, err := simulate(ctx, cfg, component, log.With(logger, "point", fmtParams(point)))
		if err != nil {
			return 0, err
		}
		return score(o)
	}

	best, points, err := search.Search(ctx, evaluate, maximize)
	if err != nil {
		return err
	}
	optim.Rank(points, maximize)

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(objective))
	for _, p := range points {
		cells := make([]string, len(names))
		for i, name := range names {
			cells[i] = fmt.Sprintf("%g", p.Params[name])
		}
		fmt.Fprintf(w, "%s\t%.6g\n", strings.Join(cells, "\t"), p.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	goal := "minimized"
	if maximize {
		goal = "maximized"
	}
	fmt.Fprintln(out, viz.Block(fmt.Sprintf("%s sweep", model), []viz.Field{
		viz.F("points", "%d", len(points)),
		viz.F("objective", "%s (%s)", objective, goal),
		viz.F("best", "%s", fmtParams(best.Params)),
		viz.F("score", "%.6g", best.Score),
	}))
	return nil
}

// withParams copies cfg with point layered over its parameters.
func withParams(cfg *config.Config, point map[string]float64) *config.Config {
	c := *cfg
	c.Params = make(map[string]float64, len(cfg.Params)+len(point))
	for k, v := range cfg.Params {
		c.Params[k] = v
	}
	for k, v := range point {
		c.Params[k] = v
	}
	return &c
}
