package models

import (
	"sort"

	"github.com/LAPKB/ode-solvers/sde"
	"github.com/pkg/errors"
)

// ErrUnknownParam is returned by SetParam for a name the model does not have.
var ErrUnknownParam = errors.New("unknown parameter")

// Model is a registered stochastic model.
type Model interface {
	sde.System[float64]
	Name() string
	Params() map[string]float64
	SetParam(name string, value float64) error
	DefaultState() sde.Vector[float64]
}

// AnalyticMean is implemented by models whose expected value E[y(t)] has a
// closed form, per component, given y(t0) = y0.
type AnalyticMean interface {
	Mean(t, t0, y0 float64) float64
}

// ApplyParams sets every entry of params on m, in name order so that the
// first failing name is deterministic.
func ApplyParams(m Model, params map[string]float64) error {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := m.SetParam(name, params[name]); err != nil {
			return errors.Wrapf(err, "model %s", m.Name())
		}
	}
	return nil
}

func unknownParam(name string) error {
	return errors.Wrapf(ErrUnknownParam, "%q", name)
}
