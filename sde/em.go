package sde

import (
	"errors"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// errStepCount is wrapped in an IntegrationError when the span divided by the
// step size is not a finite number of steps (a zero step size over a
// non-empty span).
var errStepCount = errors.New("step count is not finite")

// maxPrealloc bounds the trajectory capacity reserved up front.
const maxPrealloc = 1 << 20

type Option func(*options)

type options struct {
	logger   log.Logger
	validate bool
}

// WithLogger sets the logger used for run start and completion events.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStateValidation makes Integrate fail with ErrInvalidState as soon as a
// step produces NaN or Inf.
func WithStateValidation() Option {
	return func(o *options) { o.validate = true }
}

// EulerMaruyama advances a System over fixed steps using
//
//	y[n+1] = y[n] + f(x[n+1], y[n])*h + g(x[n+1], y[n])*sqrt(h)
//
// and records every (x, y) pair it visits.
type EulerMaruyama[T Float] struct {
	f        System[T]
	x0       float64
	y0       Vector[T]
	xEnd     float64
	stepSize float64

	x     float64
	y     Vector[T]
	xOut  []float64
	yOut  []Vector[T]
	stats Stats

	drift     Vector[T]
	diffusion Vector[T]

	opts options
}

// NewEulerMaruyama builds a stepper for f starting at (x, y) and running to
// xEnd with the given step size. The dimension of the system is len(y). No
// validation is performed: a span that is empty or has the wrong sign yields
// a run made of the initial sample only.
func NewEulerMaruyama[T Float](f System[T], x float64, y Vector[T], xEnd, stepSize float64, opts ...Option) *EulerMaruyama[T] {
	o := options{logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return &EulerMaruyama[T]{
		f:         f,
		x0:        x,
		y0:        y.Clone(),
		xEnd:      xEnd,
		stepSize:  stepSize,
		x:         x,
		y:         y.Clone(),
		drift:     make(Vector[T], len(y)),
		diffusion: make(Vector[T], len(y)),
		opts:      o,
	}
}

// Dim returns the dimension of the state vector.
func (s *EulerMaruyama[T]) Dim() int { return len(s.y0) }

// NumSteps returns ceil((xEnd - x0) / stepSize), or zero when that quantity
// is negative or undefined. The last step may overshoot xEnd.
func (s *EulerMaruyama[T]) NumSteps() (int, error) {
	n := math.Ceil((s.xEnd - s.x0) / s.stepSize)
	switch {
	case math.IsNaN(n) || n <= 0:
		return 0, nil
	case math.IsInf(n, 1) || n > math.MaxInt32:
		return 0, &IntegrationError{X: s.x0, Y: s.y0.Float64s(), Wrapped: errStepCount}
	}
	return int(n), nil
}

// Integrate runs the full integration and returns its statistics.
//
// Every call starts over from the initial condition given at construction,
// with fresh trajectory storage and zeroed statistics. Slices returned by
// XOut and YOut before the call keep describing the previous run.
//
// On failure the trajectory up to and including the offending step stays
// available through XOut and YOut.
func (s *EulerMaruyama[T]) Integrate() (Stats, error) {
	s.reset()

	if d, ok := s.f.(Dimensioned); ok && d.StateDim() != len(s.y) {
		return s.stats, &IntegrationError{X: s.x, Y: s.y.Float64s(), Wrapped: ErrDimensionMismatch}
	}

	n, err := s.NumSteps()
	if err != nil {
		return s.stats, err
	}

	c := n + 1
	if c > maxPrealloc {
		c = maxPrealloc
	}
	s.xOut = make([]float64, 0, c)
	s.yOut = make([]Vector[T], 0, c)

	s.xOut = append(s.xOut, s.x)
	s.yOut = append(s.yOut, s.y)

	level.Debug(s.opts.logger).Log("msg", "integration started", "num_steps", n, "step_size", s.stepSize, "dim", len(s.y))

	obs, _ := s.f.(Observer[T])
	for i := 0; i < n; i++ {
		xNew, yNew := s.step()

		s.xOut = append(s.xOut, xNew)
		s.yOut = append(s.yOut, yNew)

		s.x = xNew
		s.y = yNew

		s.stats.NumEval++
		s.stats.AcceptedSteps++

		if s.opts.validate && !yNew.IsValid() {
			err := &IntegrationError{Step: i + 1, X: xNew, Y: yNew.Float64s(), Wrapped: ErrInvalidState}
			level.Error(s.opts.logger).Log("msg", "integration failed", "err", err)
			return s.stats, err
		}

		if obs != nil && obs.Solout(xNew, yNew, s.drift) {
			level.Warn(s.opts.logger).Log("msg", "integration stopped by observer", "x", xNew, "accepted_steps", s.stats.AcceptedSteps)
			break
		}
	}

	level.Debug(s.opts.logger).Log("msg", "integration completed", "num_eval", s.stats.NumEval, "accepted_steps", s.stats.AcceptedSteps)
	return s.stats, nil
}

func (s *EulerMaruyama[T]) reset() {
	s.x = s.x0
	s.y = s.y0.Clone()
	s.stats = Stats{}
}

// step evaluates drift and diffusion at the new time against the current
// state and returns the next (x, y). The returned vector is freshly
// allocated; s.y is never written in place since it is shared with yOut.
func (s *EulerMaruyama[T]) step() (float64, Vector[T]) {
	xNew := s.x + s.stepSize

	s.drift.Zero()
	s.diffusion.Zero()
	s.f.Deterministic(xNew, s.y, s.drift)
	s.f.Stochastic(xNew, s.y, s.diffusion)

	h := T(s.stepSize)
	sqrtH := T(math.Sqrt(s.stepSize))

	yNew := AddScaled(make(Vector[T], len(s.y)), s.y, h, s.drift)
	AddScaled(yNew, yNew, sqrtH, s.diffusion)
	return xNew, yNew
}

// XOut returns the recorded independent variable. The slice is the
// stepper's own storage and must not be modified.
func (s *EulerMaruyama[T]) XOut() []float64 { return s.xOut }

// YOut returns the recorded states, aligned with XOut. The slice and its
// vectors are the stepper's own storage and must not be modified.
func (s *EulerMaruyama[T]) YOut() []Vector[T] { return s.yOut }

// Stats returns the statistics of the last run.
func (s *EulerMaruyama[T]) Stats() Stats { return s.stats }
