// Package analysis computes convergence trends and completion estimates
// from the buffered metrics history.
package analysis

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/MaykThewessen/highsmon/internal/buffer"
	"github.com/MaykThewessen/highsmon/internal/metrics"
)

const (
	// Tolerance is the infeasibility level at which a solver typically
	// declares convergence.
	Tolerance = 1e-6

	// trendWindow caps how many recent records feed the trend fit,
	// regardless of the overall history capacity.
	trendWindow = 20

	// valueFloor excludes values too small to take a meaningful log of.
	valueFloor = 1e-16

	// denomEpsilon guards against a numerically degenerate regression
	// denominator (all iterations effectively equal).
	denomEpsilon = 1e-12
)

// FitLogSlope fits log10(value) against iteration number via ordinary least
// squares and returns the slope in log10 units per iteration. Values at or
// below the floor are discarded first. Returns nil when fewer than 3 points
// survive or the iteration variance is degenerate.
func FitLogSlope(values []float64, iterations []int) *float64 {
	if len(values) < 3 {
		return nil
	}

	xs := make([]float64, 0, len(values))
	ys := make([]float64, 0, len(values))
	for i, v := range values {
		if v > valueFloor {
			xs = append(xs, float64(iterations[i]))
			ys = append(ys, math.Log10(v))
		}
	}
	if len(ys) < 3 {
		return nil
	}

	var sumX, sumX2 float64
	for _, x := range xs {
		sumX += x
		sumX2 += x * x
	}
	denominator := float64(len(xs))*sumX2 - sumX*sumX
	if math.Abs(denominator) < denomEpsilon {
		return nil
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return &slope
}

// Analyzer derives ConvergenceStats from a history snapshot. It holds no
// mutable state of its own; Analyze is purely a function of the history and
// the current record.
type Analyzer struct {
	history   *buffer.Ring
	tolerance float64
}

// NewAnalyzer creates an analyzer over the given history buffer.
func NewAnalyzer(history *buffer.Ring) *Analyzer {
	return &Analyzer{
		history:   history,
		tolerance: Tolerance,
	}
}

// Analyze recomputes convergence statistics for the current record.
// The record is expected to already be in the history. All fields stay nil
// until at least 3 records are available.
func (a *Analyzer) Analyze(current metrics.SolverMetrics) metrics.ConvergenceStats {
	var stats metrics.ConvergenceStats

	if a.history.Len() < 3 {
		return stats
	}

	recent := a.history.Tail(trendWindow)

	iterations := make([]int, len(recent))
	var primalValues, dualValues []float64
	for i, m := range recent {
		iterations[i] = m.Iteration
		if m.PrimalInf > 0 {
			primalValues = append(primalValues, m.PrimalInf)
		}
		if m.DualInf > 0 {
			dualValues = append(dualValues, m.DualInf)
		}
	}

	if len(primalValues) > 0 {
		stats.PrimalRate = FitLogSlope(primalValues, iterations[len(iterations)-len(primalValues):])
	}
	if len(dualValues) > 0 {
		stats.DualRate = FitLogSlope(dualValues, iterations[len(iterations)-len(dualValues):])
	}

	stats.ObjectiveRate = a.objectiveRate(recent, iterations)

	stats.EstimatedCompletion = a.estimateCompletion(current, &stats)

	return stats
}

// objectiveRate fits the trend of the relative iteration-to-iteration change
// in objective value. Needs more than 3 objective samples in the window.
func (a *Analyzer) objectiveRate(recent []metrics.SolverMetrics, iterations []int) *float64 {
	var objectives []float64
	for _, m := range recent {
		if m.Objective != nil {
			objectives = append(objectives, *m.Objective)
		}
	}
	if len(objectives) <= 3 {
		return nil
	}

	var changes []float64
	for i := 1; i < len(objectives); i++ {
		prev := objectives[i-1]
		if math.Abs(prev) > denomEpsilon {
			rel := math.Abs((objectives[i] - prev) / prev)
			if rel > valueFloor {
				changes = append(changes, rel)
			}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return FitLogSlope(changes, iterations[len(iterations)-len(changes):])
}

// estimateCompletion projects when both infeasibilities cross the tolerance,
// under a log-linear extrapolation of the recent rates. The slower of the
// two metrics dominates. Also fills IterationsRemaining on success.
func (a *Analyzer) estimateCompletion(current metrics.SolverMetrics, stats *metrics.ConvergenceStats) *time.Time {
	if stats.PrimalRate == nil || stats.DualRate == nil {
		return nil
	}

	logTolerance := math.Log10(a.tolerance)

	var primalIters, dualIters *float64
	if current.PrimalInf > a.tolerance && *stats.PrimalRate < 0 {
		n := (logTolerance - math.Log10(current.PrimalInf)) / *stats.PrimalRate
		primalIters = &n
	}
	if current.DualInf > a.tolerance && *stats.DualRate < 0 {
		n := (logTolerance - math.Log10(current.DualInf)) / *stats.DualRate
		dualIters = &n
	}

	var iterationsNeeded *float64
	switch {
	case primalIters != nil && dualIters != nil:
		n := math.Max(*primalIters, *dualIters)
		iterationsNeeded = &n
	case primalIters != nil:
		iterationsNeeded = primalIters
	case dualIters != nil:
		iterationsNeeded = dualIters
	}
	if iterationsNeeded == nil || *iterationsNeeded <= 0 {
		return nil
	}

	if a.history.Len() < 2 {
		return nil
	}
	oldest := a.history.Oldest()
	totalIterations := current.Iteration - oldest.Iteration
	totalSeconds := current.Timestamp.Sub(oldest.Timestamp).Seconds()
	if totalIterations <= 0 || totalSeconds <= 0 {
		return nil
	}

	secondsPerIteration := totalSeconds / float64(totalIterations)
	remaining := int(*iterationsNeeded)
	stats.IterationsRemaining = &remaining

	eta := current.Timestamp.Add(time.Duration(*iterationsNeeded * secondsPerIteration * float64(time.Second)))
	return &eta
}
