package analysis

import (
	"github.com/LAPKB/ode-solvers/sde"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// FinalCovariance is the sample covariance between state components of the
// final values of every trajectory. Fewer than two runs give a zero matrix.
func FinalCovariance[T sde.Float](trajs []sde.Trajectory[T]) (*mat.SymDense, error) {
	if len(trajs) == 0 {
		return nil, errors.New("no trajectories")
	}

	dim := len(trajs[0].Final())
	if dim == 0 {
		return nil, errors.New("trajectory 0 is empty")
	}
	if len(trajs) < 2 {
		return mat.NewSymDense(dim, nil), nil
	}

	data := mat.NewDense(len(trajs), dim, nil)
	for i, tr := range trajs {
		final := tr.Final()
		if len(final) != dim {
			return nil, errors.Errorf("trajectory %d has dimension %d, want %d", i, len(final), dim)
		}
		for j, v := range final {
			data.Set(i, j, float64(v))
		}
	}

	cov := mat.NewSymDense(dim, nil)
	stat.CovarianceMatrix(cov, data, nil)
	return cov, nil
}

// Rows copies a symmetric matrix into nested slices.
func Rows(m mat.Symmetric) [][]float64 {
	n := m.SymmetricDim()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}
