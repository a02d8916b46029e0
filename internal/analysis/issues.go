package analysis

import (
	"fmt"
	"time"

	"github.com/MaykThewessen/highsmon/internal/buffer"
	"github.com/MaykThewessen/highsmon/internal/metrics"
)

const (
	// slowRateThreshold flags convergence slower than one order of
	// magnitude per 10 iterations.
	slowRateThreshold = -0.1

	// blowupThreshold flags infeasibilities large enough to suggest
	// numerical trouble.
	blowupThreshold = 1e10

	// staleAfter is how long the monitor tolerates no accepted records
	// before warning.
	staleAfter = 30 * time.Second

	// stallDistinctMax is the maximum number of distinct values (at 6
	// significant digits) over the stall window before the metric counts
	// as stalled.
	stallDistinctMax = 3
)

// Detector flags solver health problems from the latest record and its
// convergence statistics.
type Detector struct {
	history        *buffer.Ring
	stallThreshold int
}

// NewDetector creates a detector inspecting the last stallThreshold records
// for stalling.
func NewDetector(history *buffer.Ring, stallThreshold int) *Detector {
	if stallThreshold <= 0 {
		stallThreshold = 20
	}
	return &Detector{
		history:        history,
		stallThreshold: stallThreshold,
	}
}

// Detect returns human-readable warnings for the current record.
// lastUpdate is when the previous record was accepted. An empty result means
// nothing was flagged.
func (d *Detector) Detect(current metrics.SolverMetrics, stats metrics.ConvergenceStats, lastUpdate time.Time) []string {
	var warnings []string

	if d.history.Len() >= d.stallThreshold {
		recent := d.history.Tail(d.stallThreshold)
		if stalling(recent, func(m metrics.SolverMetrics) float64 { return m.PrimalInf }) {
			warnings = append(warnings, "Primal infeasibility appears to be stalling")
		}
		if stalling(recent, func(m metrics.SolverMetrics) float64 { return m.DualInf }) {
			warnings = append(warnings, "Dual infeasibility appears to be stalling")
		}
	}

	if stats.PrimalRate != nil && *stats.PrimalRate > slowRateThreshold {
		warnings = append(warnings, "Slow primal convergence rate detected")
	}
	if stats.DualRate != nil && *stats.DualRate > slowRateThreshold {
		warnings = append(warnings, "Slow dual convergence rate detected")
	}

	if current.PrimalInf > blowupThreshold || current.DualInf > blowupThreshold {
		warnings = append(warnings, "Very large infeasibilities detected - possible numerical issues")
	}

	if d.history.Len() > 10 && current.Timestamp.Sub(lastUpdate) > staleAfter {
		warnings = append(warnings, "No progress updates received recently")
	}

	return warnings
}

// stalling reports whether the chosen metric shows at most stallDistinctMax
// distinct values over the window, compared at 6-significant-digit
// formatting. This is deliberately a formatting-based equality, not an
// epsilon test.
func stalling(window []metrics.SolverMetrics, value func(metrics.SolverMetrics) float64) bool {
	distinct := make(map[string]struct{}, len(window))
	for _, m := range window {
		distinct[fmt.Sprintf("%.6e", value(m))] = struct{}{}
	}
	return len(distinct) <= stallDistinctMax
}
