// Package parser classifies raw solver log lines into progress records
// and terminal status announcements.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MaykThewessen/highsmon/internal/metrics"
)

// number matches a HiGHS numeric token, including scientific notation.
const number = `[+-]?\d+\.?\d*[eE]?[+-]?\d*`

// iterationPatterns are tried in order; the first match wins. Two patterns
// can both match overlapping text, so the order fixes which field-count
// interpretation applies.
var iterationPatterns = []*regexp.Regexp{
	// Simplex iteration row: iteration, objective, primal inf, dual inf.
	regexp.MustCompile(`\s*(\d+)\s+(` + number + `)\s+(` + number + `)\s+(` + number + `)`),
	// IPM iteration row with a trailing extra column. Only the first four
	// captures are used; the fifth is solver-specific and ignored.
	regexp.MustCompile(`\s*(\d+)\s+(` + number + `)\s+(` + number + `)\s+(` + number + `)\s+(` + number + `)`),
	// Verbose textual form without an objective column.
	regexp.MustCompile(`Iteration\s+(\d+).*Primal\s+infeasibility\s+(` + number + `).*Dual\s+infeasibility\s+(` + number + `)`),
	// Compact form: iteration, primal inf, dual inf.
	regexp.MustCompile(`(\d+)\s+(` + number + `)\s+(` + number + `)`),
}

// statusPatterns map terminal solver states to their announcement text.
// Checked in declaration order; the first match ends the run.
var statusPatterns = []struct {
	status  metrics.Status
	pattern *regexp.Regexp
}{
	{metrics.StatusOptimal, regexp.MustCompile(`(?i)Optimal|Model\s+status\s*:\s*Optimal`)},
	{metrics.StatusInfeasible, regexp.MustCompile(`(?i)Infeasible|Model\s+status\s*:\s*Infeasible`)},
	{metrics.StatusUnbounded, regexp.MustCompile(`(?i)Unbounded|Model\s+status\s*:\s*Unbounded`)},
	{metrics.StatusNumericalIssues, regexp.MustCompile(`(?i)numerical|instability|conditioning|ill.conditioned`)},
	{metrics.StatusTimeLimit, regexp.MustCompile(`(?i)time.?limit|Model\s+status\s*:\s*Time\s+limit`)},
	{metrics.StatusIterationLimit, regexp.MustCompile(`(?i)iteration.?limit`)},
}

// DetectStatus checks a line for a terminal status announcement.
// Returns StatusRunning, false when the line announces nothing.
func DetectStatus(line string) (metrics.Status, bool) {
	for _, sp := range statusPatterns {
		if sp.pattern.MatchString(line) {
			return sp.status, true
		}
	}
	return metrics.StatusRunning, false
}

// ParseLine extracts a progress record from one line of solver output.
// Returns nil for lines that match no recognized dialect; that is not an
// error. Malformed numeric text inside a matching pattern falls through to
// the next pattern.
func ParseLine(line string) *metrics.SolverMetrics {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	for _, pattern := range iterationPatterns {
		match := pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		groups := match[1:]

		iteration, err := strconv.Atoi(groups[0])
		if err != nil {
			continue
		}

		var objective, primalInf, dualInf *float64
		if len(groups) >= 4 {
			objective = parseNumeric(groups[1])
			primalInf = parseNumeric(groups[2])
			dualInf = parseNumeric(groups[3])
		} else {
			primalInf = parseNumeric(groups[1])
			dualInf = parseNumeric(groups[2])
		}

		if primalInf == nil || dualInf == nil {
			continue
		}

		return &metrics.SolverMetrics{
			Iteration: iteration,
			PrimalInf: *primalInf,
			DualInf:   *dualInf,
			Objective: objective,
			Timestamp: time.Now(),
		}
	}

	return nil
}

// parseNumeric converts a captured token to a float. The literal tokens "-",
// "N/A", and the empty string mean "no value" and yield nil, as does any
// token strconv cannot parse.
func parseNumeric(token string) *float64 {
	if token == "" || token == "-" || token == "N/A" {
		return nil
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return nil
	}
	return &v
}
