package sde

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"
)

// Trajectory is the output of one ensemble member.
type Trajectory[T Float] struct {
	X     []float64
	Y     []Vector[T]
	Stats Stats
}

// Final returns the last recorded state.
func (t Trajectory[T]) Final() Vector[T] {
	if len(t.Y) == 0 {
		return nil
	}
	return t.Y[len(t.Y)-1]
}

// Factory builds the model for one run. Each run must get its own instance
// (and its own random source) because runs execute concurrently.
type Factory[T Float] func(run int) (System[T], error)

type EnsembleConfig struct {
	X0       float64
	XEnd     float64
	StepSize float64
	Runs     int
	// Workers bounds the number of runs in flight; zero means GOMAXPROCS.
	Workers       int
	ValidateState bool
}

// Ensemble integrates many independent trajectories of the same problem.
type Ensemble[T Float] struct {
	factory Factory[T]
	y0      Vector[T]
	cfg     EnsembleConfig
	logger  log.Logger
}

func NewEnsemble[T Float](factory Factory[T], y0 Vector[T], cfg EnsembleConfig, logger log.Logger) *Ensemble[T] {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Ensemble[T]{factory: factory, y0: y0.Clone(), cfg: cfg, logger: logger}
}

// Run executes every member and returns the trajectories indexed by run.
// The first failure cancels the runs not yet started and is returned.
func (e *Ensemble[T]) Run(ctx context.Context) ([]Trajectory[T], error) {
	if e.cfg.Runs < 0 {
		return nil, fmt.Errorf("sde: negative run count %d", e.cfg.Runs)
	}
	results := make([]Trajectory[T], e.cfg.Runs)

	workers := e.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := 0; i < e.cfg.Runs; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			traj, err := e.runOne(i)
			if err != nil {
				level.Error(e.logger).Log("msg", "ensemble member failed", "run", i, "err", err)
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = traj
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	level.Debug(e.logger).Log("msg", "ensemble completed", "runs", e.cfg.Runs, "workers", workers)
	return results, nil
}

func (e *Ensemble[T]) runOne(run int) (Trajectory[T], error) {
	sys, err := e.factory(run)
	if err != nil {
		return Trajectory[T]{}, err
	}

	opts := []Option{WithLogger(log.With(e.logger, "run", run))}
	if e.cfg.ValidateState {
		opts = append(opts, WithStateValidation())
	}

	stepper := NewEulerMaruyama(sys, e.cfg.X0, e.y0, e.cfg.XEnd, e.cfg.StepSize, opts...)
	stats, err := stepper.Integrate()
	if err != nil {
		return Trajectory[T]{}, err
	}
	return Trajectory[T]{X: stepper.XOut(), Y: stepper.YOut(), Stats: stats}, nil
}

// TotalStats sums the statistics of every trajectory.
func TotalStats[T Float](trajs []Trajectory[T]) Stats {
	var total Stats
	for _, t := range trajs {
		total = total.Add(t.Stats)
	}
	return total
}
