// Package metrics defines the core solver-progress types used throughout highsmon.
package metrics

import (
	"fmt"
	"time"
)

// Status represents a terminal solver state announced in the log.
type Status int

const (
	StatusRunning Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusNumericalIssues
	StatusTimeLimit
	StatusIterationLimit
)

// String returns the string representation of a Status.
func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusUnbounded:
		return "UNBOUNDED"
	case StatusNumericalIssues:
		return "NUMERICAL_ISSUES"
	case StatusTimeLimit:
		return "TIME_LIMIT"
	case StatusIterationLimit:
		return "ITERATION_LIMIT"
	default:
		return "RUNNING"
	}
}

// Terminal reports whether the status ends a solver run.
func (s Status) Terminal() bool {
	return s != StatusRunning
}

// SolverMetrics is one accepted progress record extracted from a log line.
// Objective is nil when the matched dialect does not report it.
// Records are immutable once constructed.
type SolverMetrics struct {
	Iteration int
	PrimalInf float64
	DualInf   float64
	Objective *float64
	Timestamp time.Time // capture time, assigned at parse time
}

// Format returns a single-line human-readable rendering of the record.
func (m *SolverMetrics) Format() string {
	obj := "N/A"
	if m.Objective != nil {
		obj = fmt.Sprintf("%.6e", *m.Objective)
	}
	return fmt.Sprintf("Iter: %6d | Primal Inf: %.6e | Dual Inf: %.6e | Objective: %s",
		m.Iteration, m.PrimalInf, m.DualInf, obj)
}

// ConvergenceStats holds trend estimates recomputed after each accepted record.
// A nil field means the statistic could not be computed from the available
// history, which downstream consumers treat as "cannot report".
type ConvergenceStats struct {
	PrimalRate          *float64 // log10 units per iteration
	DualRate            *float64
	ObjectiveRate       *float64
	EstimatedCompletion *time.Time
	IterationsRemaining *int
}
