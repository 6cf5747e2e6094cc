package models

import (
	"math"
	"math/rand/v2"

	"github.com/LAPKB/ode-solvers/sde"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"
)

// OrnsteinUhlenbeck is dy = Theta*(Mu - y) dt + Sigma dW.
type OrnsteinUhlenbeck struct {
	Theta float64
	Mu    float64
	Sigma float64

	std distuv.Normal
}

func NewOrnsteinUhlenbeck(src rand.Source) *OrnsteinUhlenbeck {
	return &OrnsteinUhlenbeck{
		Theta: 1.5,
		Mu:    1.0,
		Sigma: 0.3,
		std:   distuv.Normal{Mu: 0, Sigma: 1, Src: src},
	}
}

func (o *OrnsteinUhlenbeck) Name() string { return "ou" }

func (o *OrnsteinUhlenbeck) Deterministic(_ float64, y, dy sde.Vector[float64]) {
	for i := range y {
		dy[i] = o.Theta * (o.Mu - y[i])
	}
}

func (o *OrnsteinUhlenbeck) Stochastic(_ float64, _, dl sde.Vector[float64]) {
	for i := range dl {
		dl[i] = o.Sigma * o.std.Rand()
	}
}

func (o *OrnsteinUhlenbeck) DefaultState() sde.Vector[float64] { return sde.Vector[float64]{0.0} }

func (o *OrnsteinUhlenbeck) Mean(t, t0, y0 float64) float64 {
	return o.Mu + (y0-o.Mu)*math.Exp(-o.Theta*(t-t0))
}

// StationaryVariance is Sigma^2 / (2 Theta), the variance as t grows.
func (o *OrnsteinUhlenbeck) StationaryVariance() float64 {
	return o.Sigma * o.Sigma / (2 * o.Theta)
}

func (o *OrnsteinUhlenbeck) Params() map[string]float64 {
	return map[string]float64{"theta": o.Theta, "mu": o.Mu, "sigma": o.Sigma}
}

func (o *OrnsteinUhlenbeck) SetParam(n string, v float64) error {
	switch n {
	case "theta":
		if v <= 0 {
			return errors.Errorf("theta must be positive, got %g", v)
		}
		o.Theta = v
	case "mu":
		o.Mu = v
	case "sigma":
		if v < 0 {
			return errNegative(n)
		}
		o.Sigma = v
	default:
		return unknownParam(n)
	}
	return nil
}

func errNegative(name string) error {
	return errors.Errorf("%s must be non-negative", name)
}
