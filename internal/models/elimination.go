package models

import (
	"math"
	"math/rand/v2"

	"github.com/LAPKB/ode-solvers/sde"
	"gonum.org/v1/gonum/stat/distuv"
)

// Elimination is first-order elimination dy = -Ke*y dt with an additive
// noise loading sampled from N(0, KeIOV) on every evaluation.
type Elimination struct {
	Ke    float64
	KeIOV float64

	src rand.Source
}

func NewElimination(src rand.Source) *Elimination {
	return &Elimination{Ke: 1.0, KeIOV: 1.0, src: src}
}

func (e *Elimination) Name() string { return "elimination" }

func (e *Elimination) Deterministic(_ float64, y, dy sde.Vector[float64]) {
	for i := range y {
		dy[i] = -e.Ke * y[i]
	}
}

func (e *Elimination) Stochastic(_ float64, _, dl sde.Vector[float64]) {
	noise := distuv.Normal{Mu: 0, Sigma: e.KeIOV, Src: e.src}
	for i := range dl {
		dl[i] = noise.Rand()
	}
}

func (e *Elimination) DefaultState() sde.Vector[float64] { return sde.Vector[float64]{1.0} }

func (e *Elimination) Mean(t, t0, y0 float64) float64 {
	return y0 * math.Exp(-e.Ke*(t-t0))
}

func (e *Elimination) Params() map[string]float64 {
	return map[string]float64{"ke": e.Ke, "ke_iov": e.KeIOV}
}

func (e *Elimination) SetParam(n string, v float64) error {
	switch n {
	case "ke":
		e.Ke = v
	case "ke_iov":
		if v < 0 {
			return errNegative(n)
		}
		e.KeIOV = v
	default:
		return unknownParam(n)
	}
	return nil
}
