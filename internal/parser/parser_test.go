package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaykThewessen/highsmon/internal/metrics"
)

func TestParseLineSimplexRow(t *testing.T) {
	m := ParseLine("      1  1.000000e+03  1.000000e+01  5.000000e+01")
	require.NotNil(t, m)

	assert.Equal(t, 1, m.Iteration)
	require.NotNil(t, m.Objective)
	assert.InDelta(t, 1000.0, *m.Objective, 1e-9)
	assert.InDelta(t, 10.0, m.PrimalInf, 1e-9)
	assert.InDelta(t, 50.0, m.DualInf, 1e-9)
	assert.False(t, m.Timestamp.IsZero())
}

func TestParseLineIPMRow(t *testing.T) {
	// Five numeric columns: the trailing column is ignored.
	m := ParseLine("  12  8.878050e+02  6.900000e-06  3.100000e-05  4.200000e-01")
	require.NotNil(t, m)

	assert.Equal(t, 12, m.Iteration)
	require.NotNil(t, m.Objective)
	assert.InDelta(t, 887.805, *m.Objective, 1e-9)
	assert.InDelta(t, 6.9e-6, m.PrimalInf, 1e-15)
	assert.InDelta(t, 3.1e-5, m.DualInf, 1e-15)
}

func TestParseLineVerboseRow(t *testing.T) {
	m := ParseLine("Iteration 42 complete: Primal infeasibility 3.400000e-03 and Dual infeasibility 1.200000e-02")
	require.NotNil(t, m)

	assert.Equal(t, 42, m.Iteration)
	assert.Nil(t, m.Objective)
	assert.InDelta(t, 3.4e-3, m.PrimalInf, 1e-12)
	assert.InDelta(t, 1.2e-2, m.DualInf, 1e-12)
}

func TestParseLineCompactRow(t *testing.T) {
	m := ParseLine("7 2.5e-04 9.1e-04")
	require.NotNil(t, m)

	assert.Equal(t, 7, m.Iteration)
	assert.Nil(t, m.Objective)
	assert.InDelta(t, 2.5e-4, m.PrimalInf, 1e-12)
	assert.InDelta(t, 9.1e-4, m.DualInf, 1e-12)
}

func TestParseLineIgnoresNoise(t *testing.T) {
	for _, line := range []string{
		"",
		"   ",
		"Running HiGHS 1.7.0",
		"Solving LP without concurrency",
		"iter five 1.0 2.0",
	} {
		assert.Nil(t, ParseLine(line), "line %q should yield no record", line)
	}
}

func TestParseNumericMissingTokens(t *testing.T) {
	for _, token := range []string{"", "-", "N/A"} {
		assert.Nil(t, parseNumeric(token), "token %q should mean no value", token)
	}
	assert.Nil(t, parseNumeric("12e"))

	v := parseNumeric("-1.5e-3")
	if assert.NotNil(t, v) {
		assert.InDelta(t, -1.5e-3, *v, 1e-12)
	}
}

func TestDetectStatus(t *testing.T) {
	cases := []struct {
		line   string
		status metrics.Status
	}{
		{"Model status: Optimal", metrics.StatusOptimal},
		{"OPTIMAL", metrics.StatusOptimal},
		{"INFEASIBLE PROBLEM DETECTED", metrics.StatusInfeasible},
		{"Model  status : Unbounded", metrics.StatusUnbounded},
		{"Numerical instability detected", metrics.StatusNumericalIssues},
		{"matrix is ill-conditioned", metrics.StatusNumericalIssues},
		{"Time limit reached", metrics.StatusTimeLimit},
		{"ITERATION LIMIT", metrics.StatusIterationLimit},
	}
	for _, tc := range cases {
		status, ok := DetectStatus(tc.line)
		assert.True(t, ok, "line %q should announce a status", tc.line)
		assert.Equal(t, tc.status, status, "line %q", tc.line)
	}
}

func TestDetectStatusIgnoresMetricRows(t *testing.T) {
	for _, line := range []string{
		"      1  1.000000e+03  1.000000e+01  5.000000e+01",
		"Iteration 42 complete: Primal infeasibility 3.4e-03 and Dual infeasibility 1.2e-02",
		"Presolve : Reductions: rows 234(-56.7%); columns 120(-30.0%)",
	} {
		_, ok := DetectStatus(line)
		assert.False(t, ok, "line %q should not terminate the run", line)
	}
}
