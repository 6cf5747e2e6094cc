package metrics

import (
	"math"

	"github.com/LAPKB/ode-solvers/sde"
)

// MaxAbs is the largest absolute component value seen.
type MaxAbs struct {
	max float64
}

func NewMaxAbs() *MaxAbs { return &MaxAbs{} }

func (m *MaxAbs) Name() string { return "max_abs" }

func (m *MaxAbs) Observe(tr sde.Trajectory[float64]) {
	for _, y := range tr.Y {
		for _, v := range y {
			m.max = math.Max(m.max, math.Abs(v))
		}
	}
}

func (m *MaxAbs) Value() float64 { return m.max }

func (m *MaxAbs) Reset() { m.max = 0 }

// Invalid counts samples holding NaN or Inf.
type Invalid struct {
	count int
}

func NewInvalid() *Invalid { return &Invalid{} }

func (n *Invalid) Name() string { return "invalid_samples" }

func (n *Invalid) Observe(tr sde.Trajectory[float64]) {
	for _, y := range tr.Y {
		if !y.IsValid() {
			n.count++
		}
	}
}

func (n *Invalid) Value() float64 { return float64(n.count) }

func (n *Invalid) Reset() { n.count = 0 }
