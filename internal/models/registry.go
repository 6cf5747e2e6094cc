package models

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/LAPKB/ode-solvers/sde"
	"github.com/pkg/errors"
)

// Constructor builds a model drawing its noise from src.
type Constructor func(src rand.Source) Model

type Registry struct {
	models map[string]Constructor
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]Constructor)}

	r.models["elimination"] = func(src rand.Source) Model { return NewElimination(src) }
	r.models["decay"] = func(rand.Source) Model { return NewDecay() }
	r.models["ou"] = func(src rand.Source) Model { return NewOrnsteinUhlenbeck(src) }
	r.models["gbm"] = func(src rand.Source) Model { return NewGeometricBrownian(src) }
	r.models["langevin"] = func(src rand.Source) Model { return NewLangevin(src) }

	return r
}

// Register adds or replaces a model constructor.
func (r *Registry) Register(name string, c Constructor) {
	r.models[name] = c
}

func (r *Registry) Get(name string, src rand.Source) (Model, error) {
	c, ok := r.models[name]
	if !ok {
		return nil, errors.Errorf("unknown model: %s", name)
	}
	return c(src), nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the random source of one ensemble member. Runs sharing a
// seed get distinct, reproducible streams.
func Source(seed uint64, run int) rand.Source {
	return rand.NewPCG(seed, uint64(run))
}

// FactoryOptions tune the models an ensemble factory builds.
type FactoryOptions struct {
	Params map[string]float64
	Seed   uint64
	// StopAbove, when positive, stops a run once any component of the state
	// leaves [-StopAbove, StopAbove].
	StopAbove float64
}

// Factory returns an ensemble factory for the named model along with a
// prototype carrying the resolved parameters. Parameters are validated once
// here so that a bad configuration fails before any run starts.
func (r *Registry) Factory(name string, opts FactoryOptions) (sde.Factory[float64], Model, error) {
	proto, err := r.Get(name, Source(opts.Seed, 0))
	if err != nil {
		return nil, nil, err
	}
	if err := ApplyParams(proto, opts.Params); err != nil {
		return nil, nil, err
	}

	factory := func(run int) (sde.System[float64], error) {
		m, err := r.Get(name, Source(opts.Seed, run))
		if err != nil {
			return nil, err
		}
		if err := ApplyParams(m, opts.Params); err != nil {
			return nil, err
		}
		if opts.StopAbove > 0 {
			return Bound(m, opts.StopAbove), nil
		}
		return m, nil
	}
	return factory, proto, nil
}

// Bound wraps m in a Bounded observer. A model with a fixed state dimension
// keeps reporting it, so the stepper still rejects a wrong-sized state.
func Bound(m Model, limit float64) sde.System[float64] {
	b := &Bounded{Model: m, Bound: limit}
	if d, ok := m.(sde.Dimensioned); ok {
		return &dimensionedBounded{Bounded: b, dim: d.StateDim()}
	}
	return b
}

type dimensionedBounded struct {
	*Bounded
	dim int
}

func (d *dimensionedBounded) StateDim() int { return d.dim }

// Bounded wraps a model and stops the integration once the state leaves
// the box [-Bound, Bound].
type Bounded struct {
	Model
	Bound float64
}

func (b *Bounded) Solout(_ float64, y, _ sde.Vector[float64]) bool {
	for _, v := range y {
		if math.Abs(v) > b.Bound {
			return true
		}
	}
	return false
}
