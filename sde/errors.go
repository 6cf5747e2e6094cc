package sde

import (
	"errors"
	"fmt"
)

var (
	// ErrIntegration is the single failure kind of the solver family. Every
	// error returned by Integrate matches it with errors.Is.
	ErrIntegration = errors.New("sde: integration failed")

	// ErrInvalidState indicates NaN or Inf in the state after a step. Only
	// reported when state validation is enabled.
	ErrInvalidState = errors.New("sde: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates an initial state whose length differs
	// from the dimension reported by a Dimensioned system.
	ErrDimensionMismatch = errors.New("sde: dimension mismatch between state and system")
)

// IntegrationError wraps a failure with the step at which it happened.
type IntegrationError struct {
	Step    int
	X       float64
	Y       []float64
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("%v at step %d (x=%.6g): %v", ErrIntegration, e.Step, e.X, e.Wrapped)
}

func (e *IntegrationError) Unwrap() []error {
	return []error{ErrIntegration, e.Wrapped}
}
