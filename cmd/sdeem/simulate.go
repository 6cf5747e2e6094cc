package main

import (
	"context"
	"time"

	"github.com/LAPKB/ode-solvers/internal/analysis"
	"github.com/LAPKB/ode-solvers/internal/config"
	"github.com/LAPKB/ode-solvers/internal/metrics"
	"github.com/LAPKB/ode-solvers/internal/models"
	"github.com/LAPKB/ode-solvers/sde"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// defaultBound is the stability threshold when no stop bound is configured.
const defaultBound = 1e6

// outcome is one ensemble run with everything derived from it.
type outcome struct {
	proto   models.Model
	state0  sde.Vector[float64]
	trajs   []sde.Trajectory[float64]
	stats   sde.Stats
	elapsed time.Duration
	summary *analysis.Summary
	cmp     *analysis.Comparison
	cov     *mat.SymDense
	metrics map[string]float64
}

func simulate(ctx context.Context, cfg *config.Config, component int, logger log.Logger) (*outcome, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	registry := models.NewRegistry()
	factory, proto, err := registry.Factory(cfg.Model, models.FactoryOptions{
		Params:    cfg.Params,
		Seed:      cfg.Seed,
		StopAbove: cfg.StopAbove,
	})
	if err != nil {
		return nil, err
	}

	state0 := sde.Vector[float64](cfg.Y0)
	if len(state0) == 0 {
		state0 = proto.DefaultState()
	}
	if component < 0 || component >= len(state0) {
		return nil, errors.Errorf("component %d out of range for dimension %d", component, len(state0))
	}

	ens := sde.NewEnsemble(factory, state0, sde.EnsembleConfig{
		X0:            cfg.T0,
		XEnd:          cfg.TEnd,
		StepSize:      cfg.Dt,
		Runs:          cfg.Runs,
		Workers:       cfg.Workers,
		ValidateState: cfg.ValidateState,
	}, logger)

	level.Debug(logger).Log("msg", "running ensemble", "model", cfg.Model, "params", fmtParams(proto.Params()), "runs", cfg.Runs)
	start := time.Now()

	trajs, err := ens.Run(ctx)
	if err != nil {
		return nil, err
	}

	o := &outcome{
		proto:   proto,
		state0:  state0,
		trajs:   trajs,
		stats:   sde.TotalStats(trajs),
		elapsed: time.Since(start),
	}

	if o.summary, err = analysis.Summarize(trajs, component); err != nil {
		return nil, err
	}
	if am, ok := proto.(models.AnalyticMean); ok {
		y0c := state0[component]
		c := analysis.Compare(o.summary, func(t float64) float64 { return am.Mean(t, cfg.T0, y0c) })
		o.cmp = &c
	}
	if o.cov, err = analysis.FinalCovariance(trajs); err != nil {
		return nil, err
	}

	threshold := cfg.StopAbove
	if threshold == 0 {
		threshold = defaultBound
	}
	o.metrics = metrics.Evaluate(trajs, metrics.NewStability(threshold), metrics.NewMaxAbs(), metrics.NewInvalid())

	return o, nil
}

// finals returns the final value of one component in every run.
func (o *outcome) finals(component int) []float64 {
	out := make([]float64, len(o.trajs))
	for i, tr := range o.trajs {
		out[i] = tr.Final()[component]
	}
	return out
}

// stoppedEarly counts runs shorter than the longest one.
func (o *outcome) stoppedEarly() int {
	longest := 0
	for _, tr := range o.trajs {
		longest = max(longest, len(tr.X))
	}
	n := 0
	for _, tr := range o.trajs {
		if len(tr.X) < longest {
			n++
		}
	}
	return n
}
