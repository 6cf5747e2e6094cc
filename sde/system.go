package sde

// System is the model of a stochastic differential equation.
//
// Both methods write their result into the caller-provided buffer, which
// always has the same length as y. Implementations must not retain y or the
// output buffer after returning.
type System[T Float] interface {
	// Deterministic writes the drift f(x, y) into dy.
	Deterministic(x float64, y, dy Vector[T])
	// Stochastic writes the noise loading into dl. Any random sampling the
	// model wants happens here; successive calls carry no correlation imposed
	// by the stepper.
	Stochastic(x float64, y, dl Vector[T])
}

// Observer is implemented by systems that want to see every accepted step.
// Returning true stops the integration; the run still succeeds.
type Observer[T Float] interface {
	Solout(x float64, y, dy Vector[T]) bool
}

// Dimensioned is implemented by systems with a fixed state dimension. When
// present it is checked against the initial state before integrating.
type Dimensioned interface {
	StateDim() int
}

// SystemFunc adapts a pair of functions to the System interface.
type SystemFunc[T Float] struct {
	Drift     func(x float64, y, dy Vector[T])
	Diffusion func(x float64, y, dl Vector[T])
}

func (s SystemFunc[T]) Deterministic(x float64, y, dy Vector[T]) { s.Drift(x, y, dy) }

// Stochastic leaves dl at zero when no diffusion function is set.
func (s SystemFunc[T]) Stochastic(x float64, y, dl Vector[T]) {
	if s.Diffusion == nil {
		dl.Zero()
		return
	}
	s.Diffusion(x, y, dl)
}
