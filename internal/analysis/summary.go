package analysis

import (
	"math"
	"sort"

	"github.com/LAPKB/ode-solvers/sde"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const minChunk = 256

// FinalMoments describes the distribution of the last recorded value of
// every trajectory.
type FinalMoments struct {
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Q05      float64 `json:"q05"`
	Median   float64 `json:"median"`
	Q95      float64 `json:"q95"`
}

// Summary holds ensemble statistics of one state component. Mean[i] and
// Std[i] are taken over the runs that reached Times[i]; runs stopped early
// by an observer drop out of later samples.
type Summary struct {
	Component int          `json:"component"`
	Runs      int          `json:"runs"`
	Times     []float64    `json:"-"`
	Mean      []float64    `json:"-"`
	Std       []float64    `json:"-"`
	Count     []int        `json:"-"`
	Final     FinalMoments `json:"final"`
}

func Summarize[T sde.Float](trajs []sde.Trajectory[T], component int) (*Summary, error) {
	if len(trajs) == 0 {
		return nil, errors.New("no trajectories to summarize")
	}

	longest := 0
	for i, tr := range trajs {
		if len(tr.Y) == 0 {
			return nil, errors.Errorf("trajectory %d is empty", i)
		}
		if component < 0 || component >= len(tr.Y[0]) {
			return nil, errors.Errorf("component %d out of range for dimension %d", component, len(tr.Y[0]))
		}
		if len(tr.X) > len(trajs[longest].X) {
			longest = i
		}
	}

	n := len(trajs[longest].X)
	s := &Summary{
		Component: component,
		Runs:      len(trajs),
		Times:     append([]float64(nil), trajs[longest].X...),
		Mean:      make([]float64, n),
		Std:       make([]float64, n),
		Count:     make([]int, n),
	}

	ParallelFor(n, minChunk, func(start, end int) {
		vals := make([]float64, 0, len(trajs))
		for i := start; i < end; i++ {
			vals = vals[:0]
			for _, tr := range trajs {
				if i < len(tr.Y) {
					vals = append(vals, float64(tr.Y[i][component]))
				}
			}
			s.Mean[i], s.Std[i] = meanStd(vals)
			s.Count[i] = len(vals)
		}
	})

	finals := make([]float64, len(trajs))
	for i, tr := range trajs {
		finals[i] = float64(tr.Final()[component])
	}
	s.Final = moments(finals)

	return s, nil
}

func meanStd(vals []float64) (float64, float64) {
	switch len(vals) {
	case 0:
		return math.NaN(), math.NaN()
	case 1:
		return vals[0], 0
	}
	return stat.MeanStdDev(vals, nil)
}

func moments(vals []float64) FinalMoments {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	mean, variance := stat.MeanVariance(sorted, nil)
	if len(sorted) < 2 {
		variance = 0
	}
	return FinalMoments{
		Mean:     mean,
		Variance: variance,
		Min:      floats.Min(sorted),
		Max:      floats.Max(sorted),
		Q05:      stat.Quantile(0.05, stat.Empirical, sorted, nil),
		Median:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Q95:      stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
}

// Comparison measures the ensemble mean against a reference curve.
type Comparison struct {
	MaxAbsError    float64 `json:"max_abs_error"`
	FinalAbsError  float64 `json:"final_abs_error"`
	FinalReference float64 `json:"final_reference"`
}

func Compare(s *Summary, reference func(t float64) float64) Comparison {
	var c Comparison
	if len(s.Times) == 0 {
		return c
	}

	errs := make([]float64, len(s.Times))
	for i, t := range s.Times {
		errs[i] = math.Abs(s.Mean[i] - reference(t))
	}
	last := len(s.Times) - 1

	c.MaxAbsError = floats.Max(errs)
	c.FinalAbsError = errs[last]
	c.FinalReference = reference(s.Times[last])
	return c
}

// Band returns Mean-k*Std and Mean+k*Std at every sample.
func (s *Summary) Band(k float64) (lower, upper []float64) {
	lower = make([]float64, len(s.Mean))
	upper = make([]float64, len(s.Mean))
	floats.AddScaledTo(lower, s.Mean, -k, s.Std)
	floats.AddScaledTo(upper, s.Mean, k, s.Std)
	return lower, upper
}
