package sde

import (
	"math"
	"testing"

	. "github.com/onsi/gomega"
)

type decay struct{ k float64 }

func (d *decay) Deterministic(x float64, y, dy Vector[float64]) {
	for i := range y {
		dy[i] = -d.k * y[i]
	}
}

func (d *decay) Stochastic(x float64, y, dl Vector[float64]) {}

type constantNoise struct{ c float64 }

func (c *constantNoise) Deterministic(x float64, y, dy Vector[float64]) {}

func (c *constantNoise) Stochastic(x float64, y, dl Vector[float64]) {
	for i := range dl {
		dl[i] = c.c
	}
}

type recorder struct {
	xs []float64
	ys []Vector[float64]
}

func (r *recorder) Deterministic(x float64, y, dy Vector[float64]) {
	r.xs = append(r.xs, x)
	r.ys = append(r.ys, y.Clone())
	dy[0] = 1
}

func (r *recorder) Stochastic(x float64, y, dl Vector[float64]) {}

type stopAfter struct {
	decay
	limit int
	seen  int
}

func (s *stopAfter) Solout(x float64, y, dy Vector[float64]) bool {
	s.seen++
	return s.seen >= s.limit
}

type blowUp struct{}

func (blowUp) Deterministic(x float64, y, dy Vector[float64]) { dy[0] = math.Inf(1) }
func (blowUp) Stochastic(x float64, y, dl Vector[float64])    {}

type fixedDim struct {
	decay
	dim int
}

func (f *fixedDim) StateDim() int { return f.dim }

func expectedSteps(x0, xEnd, h float64) int {
	return int(math.Ceil((xEnd - x0) / h))
}

func TestEulerMaruyama_TrajectoryLength(t *testing.T) {
	tests := []struct {
		name        string
		x0, xEnd, h float64
	}{
		{"exact multiple", 0, 1, 0.1},
		{"overshoot", 0, 0.25, 0.1},
		{"fine", 0, 1, 0.001},
		{"offset start", 2, 3.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			s := NewEulerMaruyama[float64](&decay{k: 1}, tt.x0, Vector[float64]{1}, tt.xEnd, tt.h)
			stats, err := s.Integrate()
			g.Expect(err).NotTo(HaveOccurred())

			n := expectedSteps(tt.x0, tt.xEnd, tt.h)
			g.Expect(s.XOut()).To(HaveLen(n + 1))
			g.Expect(s.YOut()).To(HaveLen(n + 1))
			g.Expect(stats.AcceptedSteps).To(BeEquivalentTo(n))
			g.Expect(stats.NumEval).To(BeEquivalentTo(n))
			g.Expect(stats.RejectedSteps).To(BeZero())
		})
	}
}

func TestEulerMaruyama_Overshoot(t *testing.T) {
	g := NewWithT(t)

	s := NewEulerMaruyama[float64](&decay{k: 1}, 0, Vector[float64]{1}, 0.25, 0.1)
	_, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())

	xs := s.XOut()
	g.Expect(xs[len(xs)-1]).To(BeNumerically("~", 0.3, 1e-12))
	g.Expect(xs[len(xs)-1]).To(BeNumerically(">", 0.25))
}

func TestEulerMaruyama_InitialSample(t *testing.T) {
	g := NewWithT(t)

	y0 := Vector[float64]{1.5, -2}
	s := NewEulerMaruyama[float64](&decay{k: 0.5}, 0.25, y0, 1, 0.05)
	_, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(s.XOut()[0]).To(Equal(0.25))
	g.Expect(s.YOut()[0]).To(Equal(Vector[float64]{1.5, -2}))

	y0[0] = 99
	g.Expect(s.YOut()[0][0]).To(Equal(1.5))
}

func TestEulerMaruyama_FixedStep(t *testing.T) {
	g := NewWithT(t)

	h := 0.01
	s := NewEulerMaruyama[float64](&decay{k: 1}, 0, Vector[float64]{1}, 2, h)
	_, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())

	xs := s.XOut()
	for i := 1; i < len(xs); i++ {
		g.Expect(xs[i] - xs[i-1]).To(BeNumerically("~", h, 1e-12))
	}
}

func TestEulerMaruyama_ReducesToEuler(t *testing.T) {
	g := NewWithT(t)

	k, h, y0 := 2.0, 0.01, 3.0
	s := NewEulerMaruyama[float64](&decay{k: k}, 0, Vector[float64]{y0}, 1, h)
	_, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())

	for n, y := range s.YOut() {
		want := y0 * math.Pow(1-k*h, float64(n))
		g.Expect(y[0]).To(BeNumerically("~", want, 1e-12))
	}
}

func TestEulerMaruyama_DiffusionScalesWithSqrtStep(t *testing.T) {
	g := NewWithT(t)

	c, h := 0.5, 0.04
	s := NewEulerMaruyama[float64](&constantNoise{c: c}, 0, Vector[float64]{0, 1}, 1, h)
	_, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())

	for n, y := range s.YOut() {
		inc := float64(n) * c * math.Sqrt(h)
		g.Expect(y[0]).To(BeNumerically("~", inc, 1e-12))
		g.Expect(y[1]).To(BeNumerically("~", 1+inc, 1e-12))
	}
}

func TestEulerMaruyama_EvaluatesAtNewTimeWithOldState(t *testing.T) {
	g := NewWithT(t)

	r := &recorder{}
	s := NewEulerMaruyama[float64](r, 0, Vector[float64]{0}, 0.3, 0.1)
	_, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(r.xs).To(HaveLen(3))
	ys := s.YOut()
	xs := s.XOut()
	for i := range r.xs {
		g.Expect(r.xs[i]).To(Equal(xs[i+1]))
		g.Expect(r.ys[i]).To(Equal(ys[i]))
	}
}

func TestEulerMaruyama_EndToEndDecay(t *testing.T) {
	g := NewWithT(t)

	s := NewEulerMaruyama[float64](&decay{k: 1}, 0, Vector[float64]{1}, 1, 0.001)
	_, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())

	ys := s.YOut()
	g.Expect(ys[len(ys)-1][0]).To(BeNumerically("~", math.Exp(-1), 1e-3))
}

func TestEulerMaruyama_Degenerate(t *testing.T) {
	tests := []struct {
		name        string
		x0, xEnd, h float64
	}{
		{"empty span", 1, 1, 0.1},
		{"reversed span", 1, 0, 0.1},
		{"negative step", 0, 1, -0.1},
		{"empty span zero step", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWithT(t)

			s := NewEulerMaruyama[float64](&decay{k: 1}, tt.x0, Vector[float64]{1}, tt.xEnd, tt.h)
			stats, err := s.Integrate()
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(stats).To(Equal(Stats{}))
			g.Expect(s.XOut()).To(Equal([]float64{tt.x0}))
			g.Expect(s.YOut()).To(HaveLen(1))
		})
	}
}

func TestEulerMaruyama_ZeroStepOverSpan(t *testing.T) {
	g := NewWithT(t)

	s := NewEulerMaruyama[float64](&decay{k: 1}, 0, Vector[float64]{1}, 1, 0)
	_, err := s.Integrate()
	g.Expect(err).To(MatchError(ErrIntegration))

	var ie *IntegrationError
	g.Expect(err).To(BeAssignableToTypeOf(ie))
}

func TestEulerMaruyama_ObserverStopsEarly(t *testing.T) {
	g := NewWithT(t)

	m := &stopAfter{decay: decay{k: 1}, limit: 5}
	s := NewEulerMaruyama[float64](m, 0, Vector[float64]{1}, 1, 0.01)
	stats, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(stats.AcceptedSteps).To(BeEquivalentTo(5))
	g.Expect(s.XOut()).To(HaveLen(6))
}

func TestEulerMaruyama_StateValidation(t *testing.T) {
	g := NewWithT(t)

	s := NewEulerMaruyama[float64](blowUp{}, 0, Vector[float64]{1}, 1, 0.1)
	_, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())

	s = NewEulerMaruyama[float64](blowUp{}, 0, Vector[float64]{1}, 1, 0.1, WithStateValidation())
	stats, err := s.Integrate()
	g.Expect(err).To(MatchError(ErrIntegration))
	g.Expect(err).To(MatchError(ErrInvalidState))
	g.Expect(stats.AcceptedSteps).To(BeEquivalentTo(1))
	g.Expect(s.XOut()).To(HaveLen(2))
}

func TestEulerMaruyama_DimensionMismatch(t *testing.T) {
	g := NewWithT(t)

	s := NewEulerMaruyama[float64](&fixedDim{decay: decay{k: 1}, dim: 2}, 0, Vector[float64]{1}, 1, 0.1)
	_, err := s.Integrate()
	g.Expect(err).To(MatchError(ErrDimensionMismatch))
	g.Expect(err).To(MatchError(ErrIntegration))
}

func TestEulerMaruyama_RerunStartsOver(t *testing.T) {
	g := NewWithT(t)

	s := NewEulerMaruyama[float64](&decay{k: 1}, 0, Vector[float64]{1}, 1, 0.1)
	_, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())
	first := s.XOut()
	firstY := s.YOut()

	stats, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(stats.AcceptedSteps).To(BeEquivalentTo(10))

	g.Expect(s.XOut()).To(Equal(first))
	g.Expect(s.YOut()).To(Equal(firstY))
	g.Expect(&s.XOut()[0]).NotTo(BeIdenticalTo(&first[0]))
}

func TestEulerMaruyama_OutputsAreViews(t *testing.T) {
	g := NewWithT(t)

	s := NewEulerMaruyama[float64](&decay{k: 1}, 0, Vector[float64]{1}, 1, 0.1)
	_, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(&s.XOut()[0]).To(BeIdenticalTo(&s.XOut()[0]))
	g.Expect(&s.YOut()[0]).To(BeIdenticalTo(&s.YOut()[0]))
}

func TestEulerMaruyama_Float32(t *testing.T) {
	g := NewWithT(t)

	sys := SystemFunc[float32]{
		Drift: func(x float64, y, dy Vector[float32]) { dy[0] = -y[0] },
	}
	s := NewEulerMaruyama[float32](sys, 0, Vector[float32]{1}, 1, 0.01)
	_, err := s.Integrate()
	g.Expect(err).NotTo(HaveOccurred())

	ys := s.YOut()
	g.Expect(float64(ys[len(ys)-1][0])).To(BeNumerically("~", math.Pow(0.99, 100), 1e-5))
}
