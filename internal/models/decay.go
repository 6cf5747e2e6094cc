package models

import (
	"math"

	"github.com/LAPKB/ode-solvers/sde"
)

// Decay is dy = -K*y dt with no diffusion, the deterministic limit of
// Elimination. Euler–Maruyama reduces to explicit Euler on it.
type Decay struct {
	K float64
}

func NewDecay() *Decay {
	return &Decay{K: 1.0}
}

func (d *Decay) Name() string { return "decay" }

func (d *Decay) Deterministic(_ float64, y, dy sde.Vector[float64]) {
	for i := range y {
		dy[i] = -d.K * y[i]
	}
}

func (d *Decay) Stochastic(_ float64, _, dl sde.Vector[float64]) {
	dl.Zero()
}

func (d *Decay) DefaultState() sde.Vector[float64] { return sde.Vector[float64]{1.0} }

func (d *Decay) Mean(t, t0, y0 float64) float64 {
	return y0 * math.Exp(-d.K*(t-t0))
}

func (d *Decay) Params() map[string]float64 {
	return map[string]float64{"k": d.K}
}

func (d *Decay) SetParam(n string, v float64) error {
	if n != "k" {
		return unknownParam(n)
	}
	d.K = v
	return nil
}
