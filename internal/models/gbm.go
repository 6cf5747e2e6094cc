package models

import (
	"math"
	"math/rand/v2"

	"github.com/LAPKB/ode-solvers/sde"
	"gonum.org/v1/gonum/stat/distuv"
)

// GeometricBrownian is dy = Mu*y dt + Sigma*y dW.
type GeometricBrownian struct {
	Mu    float64
	Sigma float64

	std distuv.Normal
}

func NewGeometricBrownian(src rand.Source) *GeometricBrownian {
	return &GeometricBrownian{
		Mu:    0.05,
		Sigma: 0.2,
		std:   distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

func (g *GeometricBrownian) Name() string { return "gbm" }

func (g *GeometricBrownian) Deterministic(_ float64, y, dy sde.Vector[float64]) {
	for i := range y {
		dy[i] = g.Mu * y[i]
	}
}

func (g *GeometricBrownian) Stochastic(_ float64, y, dl sde.Vector[float64]) {
	for i := range y {
		dl[i] = g.Sigma * y[i] * g.std.Rand()
	}
}

func (g *GeometricBrownian) DefaultState() sde.Vector[float64] { return sde.Vector[float64]{1.0} }

func (g *GeometricBrownian) Mean(t, t0, y0 float64) float64 {
	return y0 * math.Exp(g.Mu*(t-t0))
}

func (g *GeometricBrownian) Params() map[string]float64 {
	return map[string]float64{"mu": g.Mu, "sigma": g.Sigma}
}

func (g *GeometricBrownian) SetParam(n string, v float64) error {
	switch n {
	case "mu":
		g.Mu = v
	case "sigma":
		if v < 0 {
			return errNegative(n)
		}
		g.Sigma = v
	default:
		return unknownParam(n)
	}
	return nil
}
