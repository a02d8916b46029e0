package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaykThewessen/highsmon/internal/buffer"
	"github.com/MaykThewessen/highsmon/internal/metrics"
)

func TestFitLogSlopeTooFewPoints(t *testing.T) {
	assert.Nil(t, FitLogSlope(nil, nil))
	assert.Nil(t, FitLogSlope([]float64{1, 0.1}, []int{0, 1}))
}

func TestFitLogSlopeTooFewSurvivingPoints(t *testing.T) {
	// Values at or below the floor are discarded before the fit.
	values := []float64{1, 0.1, 1e-18, 0}
	iterations := []int{0, 1, 2, 3}
	assert.Nil(t, FitLogSlope(values, iterations))
}

func TestFitLogSlopeRecoversKnownSlope(t *testing.T) {
	values := make([]float64, 10)
	iterations := make([]int, 10)
	for i := range values {
		values[i] = math.Pow(10, -0.5*float64(i))
		iterations[i] = i
	}

	slope := FitLogSlope(values, iterations)
	require.NotNil(t, slope)
	assert.InDelta(t, -0.5, *slope, 1e-9)
}

func TestFitLogSlopeDegenerateIterations(t *testing.T) {
	// All points at the same iteration leave no variance to regress on.
	values := []float64{1, 0.5, 0.25}
	iterations := []int{7, 7, 7}
	assert.Nil(t, FitLogSlope(values, iterations))
}

// seedHistory fills a ring with records at 1-second spacing whose
// infeasibilities decay as 10^(rate*i).
func seedHistory(n int, rate float64, base time.Time) (*buffer.Ring, metrics.SolverMetrics) {
	ring := buffer.NewRing(50)
	var last metrics.SolverMetrics
	for i := 0; i < n; i++ {
		last = metrics.SolverMetrics{
			Iteration: i,
			PrimalInf: math.Pow(10, rate*float64(i)),
			DualInf:   math.Pow(10, rate*float64(i)),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		ring.Push(last)
	}
	return ring, last
}

func TestAnalyzeRequiresThreeRecords(t *testing.T) {
	ring, last := seedHistory(2, -0.5, time.Now())
	stats := NewAnalyzer(ring).Analyze(last)

	assert.Nil(t, stats.PrimalRate)
	assert.Nil(t, stats.DualRate)
	assert.Nil(t, stats.ObjectiveRate)
	assert.Nil(t, stats.EstimatedCompletion)
	assert.Nil(t, stats.IterationsRemaining)
}

func TestAnalyzeRates(t *testing.T) {
	ring, last := seedHistory(10, -0.5, time.Now())
	stats := NewAnalyzer(ring).Analyze(last)

	require.NotNil(t, stats.PrimalRate)
	require.NotNil(t, stats.DualRate)
	assert.InDelta(t, -0.5, *stats.PrimalRate, 1e-9)
	assert.InDelta(t, -0.5, *stats.DualRate, 1e-9)
}

func TestAnalyzeEstimatedCompletion(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ring, last := seedHistory(10, -0.5, base)
	stats := NewAnalyzer(ring).Analyze(last)

	// Current infeasibility is 10^-4.5; reaching 10^-6 at -0.5/iter takes
	// 3 more iterations at 1 second each.
	require.NotNil(t, stats.EstimatedCompletion)
	require.NotNil(t, stats.IterationsRemaining)
	assert.Equal(t, 3, *stats.IterationsRemaining)
	assert.InDelta(t, 3.0, stats.EstimatedCompletion.Sub(last.Timestamp).Seconds(), 1e-6)
}

func TestAnalyzeNoETAWhenConverged(t *testing.T) {
	// Everything already below tolerance: nothing to extrapolate.
	ring := buffer.NewRing(50)
	base := time.Now()
	var last metrics.SolverMetrics
	for i := 0; i < 10; i++ {
		last = metrics.SolverMetrics{
			Iteration: i,
			PrimalInf: 1e-9 * math.Pow(10, -0.1*float64(i)),
			DualInf:   1e-9 * math.Pow(10, -0.1*float64(i)),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		ring.Push(last)
	}

	stats := NewAnalyzer(ring).Analyze(last)
	require.NotNil(t, stats.PrimalRate)
	assert.Nil(t, stats.EstimatedCompletion)
	assert.Nil(t, stats.IterationsRemaining)
}

func TestAnalyzeNoETAWithoutBothRates(t *testing.T) {
	// Zero dual values are filtered out, leaving no dual rate.
	ring := buffer.NewRing(50)
	base := time.Now()
	var last metrics.SolverMetrics
	for i := 0; i < 10; i++ {
		last = metrics.SolverMetrics{
			Iteration: i,
			PrimalInf: math.Pow(10, -0.5*float64(i)),
			DualInf:   0,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		ring.Push(last)
	}

	stats := NewAnalyzer(ring).Analyze(last)
	require.NotNil(t, stats.PrimalRate)
	assert.Nil(t, stats.DualRate)
	assert.Nil(t, stats.EstimatedCompletion)
}

func TestAnalyzeNoETAWithDivergingRates(t *testing.T) {
	// Positive slope: not converging, so no completion estimate.
	ring, last := seedHistory(10, 0.3, time.Now())
	stats := NewAnalyzer(ring).Analyze(last)

	require.NotNil(t, stats.PrimalRate)
	assert.Greater(t, *stats.PrimalRate, 0.0)
	assert.Nil(t, stats.EstimatedCompletion)
}

func TestAnalyzeObjectiveRate(t *testing.T) {
	ring := buffer.NewRing(50)
	base := time.Now()
	var last metrics.SolverMetrics
	for i := 0; i < 10; i++ {
		// Objective approaches 1000 with geometrically shrinking steps,
		// giving a clean log-linear relative-change series.
		obj := 1000.0 + 100.0*math.Pow(10, -0.5*float64(i))
		last = metrics.SolverMetrics{
			Iteration: i,
			PrimalInf: math.Pow(10, -0.5*float64(i)),
			DualInf:   math.Pow(10, -0.5*float64(i)),
			Objective: &obj,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		ring.Push(last)
	}

	stats := NewAnalyzer(ring).Analyze(last)
	require.NotNil(t, stats.ObjectiveRate)
	assert.Less(t, *stats.ObjectiveRate, 0.0)
}

func TestAnalyzeObjectiveRateNeedsFourSamples(t *testing.T) {
	ring := buffer.NewRing(50)
	base := time.Now()
	var last metrics.SolverMetrics
	for i := 0; i < 6; i++ {
		m := metrics.SolverMetrics{
			Iteration: i,
			PrimalInf: math.Pow(10, -0.5*float64(i)),
			DualInf:   math.Pow(10, -0.5*float64(i)),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		// Only three records carry an objective.
		if i < 3 {
			obj := 1000.0 - float64(i)
			m.Objective = &obj
		}
		last = m
		ring.Push(m)
	}

	stats := NewAnalyzer(ring).Analyze(last)
	assert.Nil(t, stats.ObjectiveRate)
}
