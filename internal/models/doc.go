// Package models provides example stochastic models for the Euler–Maruyama
// solver.
//
// Each model implements [sde.System] over float64 states:
//
//   - [Elimination]: first-order elimination with a sampled noise term
//   - [Decay]: the same drift with no noise at all
//   - [OrnsteinUhlenbeck]: mean-reverting process
//   - [GeometricBrownian]: multiplicative noise
//
// Models draw their noise from the [rand.Source] they are built with, so
// one source must never be shared between models that run concurrently.
// The [Registry] builds an independent, reproducible source per run.
package models
