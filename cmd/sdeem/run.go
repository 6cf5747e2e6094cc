package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/LAPKB/ode-solvers/internal/analysis"
	"github.com/LAPKB/ode-solvers/internal/config"
	"github.com/LAPKB/ode-solvers/internal/storage"
	"github.com/LAPKB/ode-solvers/internal/viz"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func runEnsemble(cmd *cobra.Command, args []string) error {
	model := args[0]
	logger := newLogger()

	cfg, err := resolveConfig(cmd, model)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	level.Info(logger).Log("msg", "running ensemble", "model", model, "runs", cfg.Runs, "dt", cfg.Dt, "t_end", cfg.TEnd)

	o, err := simulate(ctx, cfg, component, logger)
	if err != nil {
		return err
	}

	meta := storage.RunMetadata{
		Model:      model,
		Seed:       cfg.Seed,
		T0:         cfg.T0,
		TEnd:       cfg.TEnd,
		Dt:         cfg.Dt,
		Runs:       cfg.Runs,
		Y0:         o.state0.Float64s(),
		Params:     o.proto.Params(),
		Stats:      o.stats,
		Elapsed:    o.elapsed,
		Summary:    o.summary,
		Comparison: o.cmp,
		Covariance: analysis.Rows(o.cov),
		Metrics:    o.metrics,
	}

	runID := "(not saved)"
	if !noSave {
		st := storage.New(dataDir())
		if err := st.Init(); err != nil {
			return err
		}
		runID, err = st.Save(meta, o.trajs[0])
		if err != nil {
			return err
		}
		level.Info(logger).Log("msg", "saved run", "id", runID, "elapsed", o.elapsed)
	}

	final := o.summary.Final
	fields := []viz.Field{
		viz.F("run id", "%s", runID),
		viz.F("model", "%s %s", model, fmtParams(o.proto.Params())),
		viz.F("elapsed", "%v", o.elapsed.Round(time.Millisecond)),
		viz.F("evaluations", "%d", o.stats.NumEval),
		viz.F("accepted steps", "%d", o.stats.AcceptedSteps),
		viz.F("final mean", "%.6f", final.Mean),
		viz.F("final variance", "%.6f", final.Variance),
		viz.F("final [q05, q95]", "[%.6f, %.6f]", final.Q05, final.Q95),
		viz.F("final distribution", "%s", viz.HistogramLine(o.finals(component), 24)),
		viz.F("stability", "%s %.3f", viz.ProgressBar(o.metrics["stability"], 20), o.metrics["stability"]),
	}
	if o.cmp != nil {
		fields = append(fields,
			viz.F("analytic mean", "%.6f", o.cmp.FinalReference),
			viz.F("mean error (final/max)", "%.2e / %.2e", o.cmp.FinalAbsError, o.cmp.MaxAbsError),
		)
	}
	if len(o.state0) > 1 {
		fields = append(fields, viz.F("final covariance", "%s", viz.Matrix(o.cov)))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.Block(fmt.Sprintf("%s ensemble", model), fields))
	if stopped := o.stoppedEarly(); stopped > 0 {
		fmt.Fprintln(out, viz.Warning.Render(fmt.Sprintf("%d of %d runs stopped early", stopped, len(o.trajs))))
	}
	return nil
}

// resolveConfig layers defaults, a preset, a config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if model != cfg.Model {
		cfg.Model = model
		cfg.Params = nil
		cfg.Y0 = nil
	}

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, errors.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		cfg.Model = model
	}

	flags := cmd.Flags()
	if flags.Changed("t0") {
		cfg.T0 = t0
	}
	if flags.Changed("time") {
		cfg.TEnd = tEnd
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("y0") {
		cfg.Y0 = y0
	}
	if flags.Changed("runs") {
		cfg.Runs = runs
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("validate") {
		cfg.ValidateState = validate
	}
	if flags.Changed("stop-above") {
		cfg.StopAbove = stopAbove
	}
	if flags.Changed("param") {
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64, len(params))
		}
		for name, raw := range params {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "parameter %s", name)
			}
			cfg.Params[name] = v
		}
	}

	return cfg, nil
}

func fmtParams(p map[string]float64) string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%g", name, p[name])
	}
	return strings.Join(parts, " ")
}
