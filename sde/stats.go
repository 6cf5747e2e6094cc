package sde

import "fmt"

// Stats counts the work done by one integration run.
type Stats struct {
	NumEval       uint32 `json:"num_eval"`
	AcceptedSteps uint32 `json:"accepted_steps"`
	// RejectedSteps is always zero for fixed-step schemes. It is kept so the
	// record matches the one reported by adaptive solvers.
	RejectedSteps uint32 `json:"rejected_steps"`
}

func (s Stats) String() string {
	return fmt.Sprintf("evaluations: %d, accepted steps: %d, rejected steps: %d",
		s.NumEval, s.AcceptedSteps, s.RejectedSteps)
}

// Add accumulates o into s, used when summing over an ensemble.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		NumEval:       s.NumEval + o.NumEval,
		AcceptedSteps: s.AcceptedSteps + o.AcceptedSteps,
		RejectedSteps: s.RejectedSteps + o.RejectedSteps,
	}
}
