package models

import (
	"math"
	"testing"

	"github.com/LAPKB/ode-solvers/sde"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecayDrift(t *testing.T) {
	d := NewDecay()
	d.K = 2

	y := sde.Vector[float64]{1.5, -1}
	dy := make(sde.Vector[float64], 2)
	d.Deterministic(0, y, dy)
	assert.Equal(t, sde.Vector[float64]{-3, 2}, dy)

	dl := sde.Vector[float64]{7, 7}
	d.Stochastic(0, y, dl)
	assert.Equal(t, sde.Vector[float64]{0, 0}, dl)
}

func TestEliminationNoiseStatistics(t *testing.T) {
	e := NewElimination(Source(3, 0))
	e.KeIOV = 0.5

	const n = 20000
	dl := make(sde.Vector[float64], 1)
	sum, sumSq := 0.0, 0.0
	for i := 0; i < n; i++ {
		e.Stochastic(0, sde.Vector[float64]{1}, dl)
		sum += dl[0]
		sumSq += dl[0] * dl[0]
	}
	mean := sum / n
	std := math.Sqrt(sumSq/n - mean*mean)

	assert.InDelta(t, 0, mean, 0.02)
	assert.InDelta(t, 0.5, std, 0.02)
}

func TestEliminationZeroNoise(t *testing.T) {
	e := NewElimination(Source(1, 0))
	require.NoError(t, e.SetParam("ke_iov", 0))

	dl := sde.Vector[float64]{3}
	e.Stochastic(0, sde.Vector[float64]{1}, dl)
	assert.Equal(t, 0.0, dl[0])
}

func TestSameSourceSameNoise(t *testing.T) {
	a := NewOrnsteinUhlenbeck(Source(9, 4))
	b := NewOrnsteinUhlenbeck(Source(9, 4))
	c := NewOrnsteinUhlenbeck(Source(9, 5))

	da, db, dc := make(sde.Vector[float64], 3), make(sde.Vector[float64], 3), make(sde.Vector[float64], 3)
	y := sde.Vector[float64]{0, 0, 0}
	a.Stochastic(0, y, da)
	b.Stochastic(0, y, db)
	c.Stochastic(0, y, dc)

	assert.Equal(t, da, db)
	assert.NotEqual(t, da, dc)
}

func TestOrnsteinUhlenbeckMean(t *testing.T) {
	o := NewOrnsteinUhlenbeck(Source(1, 0))
	assert.InDelta(t, o.Mu, o.Mean(100, 0, 5), 1e-9)
	assert.Equal(t, 5.0, o.Mean(0, 0, 5))
	assert.InDelta(t, 0.03, o.StationaryVariance(), 1e-12)
}

func TestGeometricBrownianDiffusionScalesWithState(t *testing.T) {
	g := NewGeometricBrownian(Source(1, 0))

	dl := make(sde.Vector[float64], 2)
	g.Stochastic(0, sde.Vector[float64]{0, 2}, dl)
	assert.Equal(t, 0.0, dl[0])
	assert.NotZero(t, dl[1])
}

func TestSetParam(t *testing.T) {
	tests := []struct {
		model string
		param string
		value float64
		ok    bool
	}{
		{"elimination", "ke", 0.3, true},
		{"elimination", "ke_iov", -1, false},
		{"elimination", "kx", 1, false},
		{"decay", "k", 4, true},
		{"ou", "theta", 0, false},
		{"ou", "sigma", 0.1, true},
		{"gbm", "mu", -0.1, true},
		{"gbm", "sigma", -0.1, false},
		{"langevin", "gamma", 0.1, true},
		{"langevin", "omega", -2, false},
	}

	r := NewRegistry()
	for _, tt := range tests {
		m, err := r.Get(tt.model, Source(1, 0))
		require.NoError(t, err)

		err = m.SetParam(tt.param, tt.value)
		if !tt.ok {
			assert.Error(t, err, "%s.%s=%g", tt.model, tt.param, tt.value)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.value, m.Params()[tt.param])
	}
}

func TestUnknownParam(t *testing.T) {
	err := NewDecay().SetParam("nope", 1)
	assert.ErrorIs(t, err, ErrUnknownParam)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"decay", "elimination", "gbm", "langevin", "ou"}, r.List())

	_, err := r.Get("lorenz", nil)
	assert.Error(t, err)

	for _, name := range r.List() {
		m, err := r.Get(name, Source(1, 0))
		require.NoError(t, err)
		assert.Equal(t, name, m.Name())
		assert.NotEmpty(t, m.DefaultState())
		_, ok := m.(AnalyticMean)
		assert.Equal(t, name != "langevin", ok, "%s analytic mean", name)
	}
}

func TestFactory(t *testing.T) {
	r := NewRegistry()

	_, _, err := r.Factory("decay", FactoryOptions{Params: map[string]float64{"q": 1}})
	assert.ErrorIs(t, err, ErrUnknownParam)

	factory, proto, err := r.Factory("decay", FactoryOptions{Params: map[string]float64{"k": 3}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, proto.Params()["k"])

	sys, err := factory(2)
	require.NoError(t, err)
	dy := make(sde.Vector[float64], 1)
	sys.Deterministic(0, sde.Vector[float64]{1}, dy)
	assert.Equal(t, -3.0, dy[0])
}

func TestFactoryStopAbove(t *testing.T) {
	r := NewRegistry()
	factory, _, err := r.Factory("gbm", FactoryOptions{
		Params:    map[string]float64{"mu": 5, "sigma": 0},
		StopAbove: 2,
	})
	require.NoError(t, err)

	sys, err := factory(0)
	require.NoError(t, err)

	s := sde.NewEulerMaruyama(sys, 0, sde.Vector[float64]{1}, 10, 0.01)
	stats, err := s.Integrate()
	require.NoError(t, err)

	xs := s.XOut()
	ys := s.YOut()
	assert.Less(t, int(stats.AcceptedSteps), 1000)
	assert.Greater(t, ys[len(ys)-1][0], 2.0)
	assert.LessOrEqual(t, ys[len(ys)-2][0], 2.0)
	assert.Less(t, xs[len(xs)-1], 10.0)
}

func TestLangevinNoiseOnVelocity(t *testing.T) {
	l := NewLangevin(Source(2, 0))

	dy := make(sde.Vector[float64], 2)
	l.Deterministic(0, sde.Vector[float64]{1, 0.5}, dy)
	assert.Equal(t, 0.5, dy[0])
	assert.InDelta(t, -0.25-4, dy[1], 1e-12)

	dl := sde.Vector[float64]{7, 7}
	l.Stochastic(0, sde.Vector[float64]{1, 0.5}, dl)
	assert.Equal(t, 0.0, dl[0])
	assert.NotEqual(t, 7.0, dl[1])
}

func TestLangevinDimensionChecked(t *testing.T) {
	s := sde.NewEulerMaruyama[float64](NewLangevin(Source(1, 0)), 0, sde.Vector[float64]{1}, 1, 0.1)
	_, err := s.Integrate()
	assert.ErrorIs(t, err, sde.ErrDimensionMismatch)
}

func TestLangevinDampsEnergy(t *testing.T) {
	l := NewLangevin(Source(1, 0))
	require.NoError(t, l.SetParam("sigma", 0))

	s := sde.NewEulerMaruyama[float64](l, 0, l.DefaultState(), 20, 0.001)
	_, err := s.Integrate()
	require.NoError(t, err)

	ys := s.YOut()
	assert.Less(t, l.Energy(ys[len(ys)-1]), 0.01*l.Energy(ys[0]))
}

func TestFactoryStopAboveKeepsDimension(t *testing.T) {
	r := NewRegistry()
	factory, _, err := r.Factory("langevin", FactoryOptions{StopAbove: 10})
	require.NoError(t, err)

	sys, err := factory(0)
	require.NoError(t, err)
	_, isObserver := sys.(sde.Observer[float64])
	assert.True(t, isObserver)

	s := sde.NewEulerMaruyama(sys, 0, sde.Vector[float64]{1}, 1, 0.1)
	_, err = s.Integrate()
	assert.ErrorIs(t, err, sde.ErrDimensionMismatch)

	s = sde.NewEulerMaruyama(sys, 0, sde.Vector[float64]{1, 0}, 1, 0.1)
	_, err = s.Integrate()
	assert.NoError(t, err)
}

func TestBoundWithoutDimension(t *testing.T) {
	sys := Bound(NewDecay(), 5)
	_, isDimensioned := sys.(sde.Dimensioned)
	assert.False(t, isDimensioned)

	s := sde.NewEulerMaruyama(sys, 0, sde.Vector[float64]{1, 2, 3}, 1, 0.1)
	_, err := s.Integrate()
	assert.NoError(t, err)
}
