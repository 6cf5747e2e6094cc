package metrics

import (
	"math"

	"github.com/LAPKB/ode-solvers/sde"
)

// Stability is the fraction of runs whose recorded states never leave the
// box [-bound, bound]. A run stopped by a bound observer records the state
// that crossed it, so it counts as escaped.
type Stability struct {
	bound   float64
	runs    int
	escaped int
}

func NewStability(bound float64) *Stability {
	return &Stability{bound: bound}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(tr sde.Trajectory[float64]) {
	s.runs++
	if escapes(tr, s.bound) {
		s.escaped++
	}
}

// Value is 1 for an empty ensemble.
func (s *Stability) Value() float64 {
	if s.runs == 0 {
		return 1
	}
	return float64(s.runs-s.escaped) / float64(s.runs)
}

func (s *Stability) Reset() {
	s.runs, s.escaped = 0, 0
}

func escapes(tr sde.Trajectory[float64], bound float64) bool {
	for _, y := range tr.Y {
		for _, v := range y {
			if math.Abs(v) > bound {
				return true
			}
		}
	}
	return false
}
