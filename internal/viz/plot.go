package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/LAPKB/ode-solvers/internal/analysis"
	"github.com/LAPKB/ode-solvers/sde"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultWidth  = 80
	DefaultHeight = 12
)

// PlotSummary draws the ensemble mean between its mean±std band.
func PlotSummary(s *analysis.Summary, width, height int) string {
	if len(s.Mean) == 0 {
		return ""
	}
	lower, upper := s.Band(1)

	caption := fmt.Sprintf("x%d: mean ± 1 std over %d runs, t in [%g, %g]",
		s.Component, s.Runs, s.Times[0], s.Times[len(s.Times)-1])
	if s.Runs == 0 {
		caption = fmt.Sprintf("x%d: mean ± 1 std, t in [%g, %g]", s.Component, s.Times[0], s.Times[len(s.Times)-1])
	}

	return asciigraph.PlotMany([][]float64{lower, s.Mean, upper},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Default, asciigraph.Blue, asciigraph.Default),
	)
}

// PlotTrajectory draws one component of a single trajectory.
func PlotTrajectory(tr sde.Trajectory[float64], component, width, height int) string {
	if len(tr.Y) == 0 {
		return ""
	}
	data := make([]float64, len(tr.Y))
	for i, y := range tr.Y {
		data[i] = y[component]
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("x%d vs time (sample run)", component)),
	)
}

// Histogram counts values into bins equal-width bins spanning their range.
func Histogram(values []float64, bins int) (counts, dividers []float64) {
	if len(values) == 0 || bins <= 0 {
		return nil, nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		hi = lo + 1
	}
	// The last divider must exceed the maximum for it to be counted.
	hi = math.Nextafter(hi+(hi-lo)*1e-9, math.Inf(1))

	dividers = make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	counts = stat.Histogram(nil, dividers, sorted, nil)
	return counts, dividers
}

// HistogramLine renders the distribution of values as a sparkline with its
// range.
func HistogramLine(values []float64, bins int) string {
	counts, dividers := Histogram(values, bins)
	if counts == nil {
		return ""
	}
	return fmt.Sprintf("%s %s",
		Sparkline(counts),
		Subtle.Render(fmt.Sprintf("[%.4g, %.4g]", dividers[0], dividers[len(dividers)-1])))
}

// Matrix formats a small symmetric matrix on one line, row by row.
func Matrix(m mat.Symmetric) string {
	n := m.SymmetricDim()
	rows := make([]string, n)
	for i := range rows {
		cells := make([]string, n)
		for j := range cells {
			cells[j] = fmt.Sprintf("%.4g", m.At(i, j))
		}
		rows[i] = strings.Join(cells, " ")
	}
	return "[" + strings.Join(rows, "; ") + "]"
}
