package metrics

import "github.com/LAPKB/ode-solvers/sde"

// Metric accumulates a scalar over the trajectories of an ensemble, one run
// at a time.
type Metric interface {
	Name() string
	Observe(tr sde.Trajectory[float64])
	Value() float64
	Reset()
}

// Evaluate resets each metric, feeds it every trajectory and collects the
// values by name.
func Evaluate(trajs []sde.Trajectory[float64], ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for _, tr := range trajs {
			m.Observe(tr)
		}
		out[m.Name()] = m.Value()
	}
	return out
}
