// Package sde provides a fixed-step Euler–Maruyama solver for stochastic
// differential equations of the form
//
//	dY = f(t, Y) dt + g(t, Y) dW
//
// The package defines:
//
//   - [Vector]: fixed-length state vector generic over the scalar type
//   - [System]: model contract exposing drift (f) and diffusion (g)
//   - [Observer]: optional per-step hook that may stop a run early
//   - [EulerMaruyama]: the stepper, recording the full trajectory
//   - [Ensemble]: many independent trajectories run concurrently
//
// # Example
//
//	stepper := sde.NewEulerMaruyama[float64](model, 0, sde.Vector[float64]{1}, 1, 0.001)
//	stats, err := stepper.Integrate()
//	ts, ys := stepper.XOut(), stepper.YOut()
//
// # Noise
//
// The stepper scales the diffusion evaluation by sqrt(h) and never draws random
// numbers itself. A model whose Stochastic method returns g(t, Y) * Z with
// Z ~ N(0, 1) therefore produces the Wiener increment g * sqrt(h) * Z.
//
// # Thread Safety
//
// EulerMaruyama instances are NOT thread-safe. For parallel runs build one
// stepper per trajectory, which is what [Ensemble] does.
package sde
