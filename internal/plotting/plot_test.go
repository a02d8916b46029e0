package plotting

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaykThewessen/highsmon/internal/metrics"
)

func sampleRecords(n int) []metrics.SolverMetrics {
	records := make([]metrics.SolverMetrics, n)
	for i := range records {
		records[i] = metrics.SolverMetrics{
			Iteration: i + 1,
			PrimalInf: math.Pow(10, -0.5*float64(i)),
			DualInf:   math.Pow(10, -0.4*float64(i)),
			Timestamp: time.Now(),
		}
	}
	return records
}

func TestConvergenceWritesChart(t *testing.T) {
	out := filepath.Join(t.TempDir(), "convergence.png")

	err := Convergence(sampleRecords(10), "test run", out)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestConvergenceRejectsEmptyInput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "convergence.png")

	err := Convergence(nil, "empty", out)
	assert.Error(t, err)

	// Zero-valued infeasibilities cannot go on a log axis either.
	records := []metrics.SolverMetrics{{Iteration: 1}, {Iteration: 2}}
	err = Convergence(records, "zeros", out)
	assert.Error(t, err)
}

func TestSeriesFiltersNonPositive(t *testing.T) {
	records := []metrics.SolverMetrics{
		{Iteration: 1, PrimalInf: 1e-2},
		{Iteration: 2, PrimalInf: 0},
		{Iteration: 3, PrimalInf: 1e-4},
	}
	pts := series(records, func(m metrics.SolverMetrics) float64 { return m.PrimalInf })
	require.Len(t, pts, 2)
	assert.Equal(t, 1.0, pts[0].X)
	assert.Equal(t, 3.0, pts[1].X)
}
