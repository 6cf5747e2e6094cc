package models

import (
	"math/rand/v2"

	"github.com/LAPKB/ode-solvers/sde"
	"gonum.org/v1/gonum/stat/distuv"
)

// Langevin is a noisy damped oscillator on the state (x, v):
//
//	dx = v dt
//	dv = (-Gamma*v - Omega^2*x) dt + Sigma dW
type Langevin struct {
	Gamma float64
	Omega float64
	Sigma float64

	std distuv.Normal
}

func NewLangevin(src rand.Source) *Langevin {
	return &Langevin{
		Gamma: 0.5,
		Omega: 2.0,
		Sigma: 0.2,
		std:   distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

func (l *Langevin) Name() string { return "langevin" }

func (l *Langevin) StateDim() int { return 2 }

func (l *Langevin) Deterministic(_ float64, y, dy sde.Vector[float64]) {
	dy[0] = y[1]
	dy[1] = -l.Gamma*y[1] - l.Omega*l.Omega*y[0]
}

// Stochastic drives the velocity only.
func (l *Langevin) Stochastic(_ float64, _, dl sde.Vector[float64]) {
	dl[0] = 0
	dl[1] = l.Sigma * l.std.Rand()
}

func (l *Langevin) DefaultState() sde.Vector[float64] { return sde.Vector[float64]{1.0, 0.0} }

// Energy is the mechanical energy of a state.
func (l *Langevin) Energy(y sde.Vector[float64]) float64 {
	return 0.5*y[1]*y[1] + 0.5*l.Omega*l.Omega*y[0]*y[0]
}

func (l *Langevin) Params() map[string]float64 {
	return map[string]float64{"gamma": l.Gamma, "omega": l.Omega, "sigma": l.Sigma}
}

func (l *Langevin) SetParam(n string, v float64) error {
	switch n {
	case "gamma", "omega", "sigma":
		if v < 0 {
			return errNegative(n)
		}
	default:
		return unknownParam(n)
	}
	switch n {
	case "gamma":
		l.Gamma = v
	case "omega":
		l.Omega = v
	case "sigma":
		l.Sigma = v
	}
	return nil
}
