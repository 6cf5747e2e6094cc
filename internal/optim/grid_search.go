package optim

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Point is one evaluated grid point.
type Point struct {
	Params map[string]float64 `json:"params"`
	Score  float64            `json:"score"`
}

// GridSearch evaluates every combination of parameter values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, errors.Errorf("%d parameter names for %d ranges", len(params), len(ranges))
	}
	seen := make(map[string]bool, len(params))
	for i, name := range params {
		if seen[name] {
			return nil, errors.Errorf("parameter %s given twice", name)
		}
		seen[name] = true
		if len(ranges[i]) == 0 {
			return nil, errors.Errorf("parameter %s has no values", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates the whole grid in order and returns the best point along
// with every evaluated point. Scores are minimized unless maximize is set;
// NaN scores never win. The first evaluation error stops the search.
func (g *GridSearch) Search(
	ctx context.Context,
	evaluate func(ctx context.Context, params map[string]float64) (float64, error),
	maximize bool,
) (Point, []Point, error) {
	points := make([]Point, 0, g.Size())
	err := g.searchRecursive(ctx, 0, make(map[string]float64), evaluate, &points)
	if err != nil {
		return Point{}, points, err
	}

	best := -1
	for i, p := range points {
		if math.IsNaN(p.Score) {
			continue
		}
		if best < 0 || (maximize && p.Score > points[best].Score) || (!maximize && p.Score < points[best].Score) {
			best = i
		}
	}
	if best < 0 {
		return Point{}, points, errors.New("no grid point produced a score")
	}
	return points[best], points, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate func(context.Context, map[string]float64) (float64, error),
	points *[]Point,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}

		score, err := evaluate(ctx, current)
		if err != nil {
			return errors.Wrapf(err, "evaluate %v", current)
		}
		*points = append(*points, Point{Params: current, Score: score})
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, evaluate, points); err != nil {
			return err
		}
	}
	return nil
}

// ParseAxis parses one grid axis, either as a list ("ke=0.5,1,2") or as
// evenly spaced values ("ke=0.5:2:4", four values from 0.5 to 2).
func ParseAxis(s string) (string, []float64, error) {
	name, rhs, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" || rhs == "" {
		return "", nil, errors.Errorf("grid axis %q: want name=v1,v2,... or name=lo:hi:n", s)
	}

	if parts := strings.Split(rhs, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return "", nil, errors.Errorf("grid axis %q: bad range", s)
		}
		if n < 2 {
			return "", nil, errors.Errorf("grid axis %q: need at least 2 points", s)
		}
		return name, floats.Span(make([]float64, n), lo, hi), nil
	}

	var values []float64
	for _, f := range strings.Split(rhs, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return "", nil, errors.Wrapf(err, "grid axis %s", name)
		}
		values = append(values, v)
	}
	return name, values, nil
}

// Rank sorts points best first. NaN scores go last.
func Rank(points []Point, maximize bool) {
	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i].Score, points[j].Score
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		if math.IsNaN(a) {
			return false
		}
		if maximize {
			return a > b
		}
		return a < b
	})
}
