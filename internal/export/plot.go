package export

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/LAPKB/ode-solvers/internal/analysis"
	"github.com/LAPKB/ode-solvers/sde"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

const (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

var bandFill = color.NRGBA{R: 0x00, G: 0x99, B: 0xcc, A: 0x40}

// Formats lists the file formats Write accepts.
var Formats = []string{"eps", "jpg", "jpeg", "pdf", "png", "svg", "tif", "tiff"}

// SummaryPlot draws the ensemble mean over a shaded mean±k*std band.
func SummaryPlot(s *analysis.Summary, k float64, title string) (*plot.Plot, error) {
	if s == nil || len(s.Times) == 0 {
		return nil, errors.New("empty summary")
	}

	lower, upper := s.Band(k)

	outline := make(plotter.XYs, 0, 2*len(s.Times))
	for i, t := range s.Times {
		outline = append(outline, plotter.XY{X: t, Y: upper[i]})
	}
	for i := len(s.Times) - 1; i >= 0; i-- {
		outline = append(outline, plotter.XY{X: s.Times[i], Y: lower[i]})
	}
	band, err := plotter.NewPolygon(outline)
	if err != nil {
		return nil, errors.Wrap(err, "band")
	}
	band.Color = bandFill
	band.LineStyle.Width = 0

	mean, err := plotter.NewLine(xys(s.Times, s.Mean))
	if err != nil {
		return nil, errors.Wrap(err, "mean")
	}
	mean.Color = plotutil.Color(0)
	mean.Width = vg.Points(1.5)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Y.Label.Text = fmt.Sprintf("y[%d]", s.Component)
	p.Add(plotter.NewGrid(), band, mean)
	p.Legend.Add("mean", mean)
	p.Legend.Add(fmt.Sprintf("±%gσ", k), band)
	return p, nil
}

// TrajectoryPlot draws every component of one trajectory against time.
func TrajectoryPlot(tr sde.Trajectory[float64], title string) (*plot.Plot, error) {
	if len(tr.Y) == 0 {
		return nil, errors.New("empty trajectory")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Add(plotter.NewGrid())

	ys := make([]float64, len(tr.Y))
	for c := range tr.Y[0] {
		for i, y := range tr.Y {
			ys[i] = y[c]
		}
		line, err := plotter.NewLine(xys(tr.X, ys))
		if err != nil {
			return nil, errors.Wrapf(err, "component %d", c)
		}
		line.Color = plotutil.Color(c)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("y[%d]", c), line)
	}
	return p, nil
}

// Write renders p in the given format ("svg", "png", "pdf", ...).
func Write(w io.Writer, p *plot.Plot, width, height vg.Length, format string) error {
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return errors.Wrapf(err, "render %s", format)
	}
	_, err = wt.WriteTo(w)
	return errors.Wrap(err, "write plot")
}

// FormatOf returns the plot format implied by a file name.
func FormatOf(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, f := range Formats {
		if f == ext {
			return ext, nil
		}
	}
	return "", errors.Errorf("unsupported plot format %q (want one of %v)", ext, Formats)
}

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range pts {
		pts[i].X = x[i]
		pts[i].Y = y[i]
	}
	return pts
}
