// Package scan runs one-shot analysis over a finished solver log.
package scan

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/MaykThewessen/highsmon/internal/analysis"
	"github.com/MaykThewessen/highsmon/internal/metrics"
	"github.com/MaykThewessen/highsmon/internal/parser"
)

// presolvePattern matches the HiGHS presolve reduction summary line.
var presolvePattern = regexp.MustCompile(`Presolve\s*:\s*Reductions:\s*rows\s+(-?\d+)\(-?\d+\.?\d*%\);\s*columns\s+(-?\d+)\(-?\d+\.?\d*%\)`)

// PresolveReductions holds the row/column reductions reported by presolve.
type PresolveReductions struct {
	Rows    int
	Columns int
}

// Result summarizes a completed solver log.
type Result struct {
	Status        metrics.Status
	WarningCount  int
	Presolve      *PresolveReductions
	ParsedRecords int
	Final         *metrics.SolverMetrics
	PrimalRate    *float64
	DualRate      *float64
}

// File scans a solver log file.
func File(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	defer f.Close()
	return Reader(f)
}

// Reader scans solver log content from a reader.
func Reader(r io.Reader) (*Result, error) {
	result := &Result{Status: metrics.StatusRunning}

	// Recent records feed the trend fit at the end.
	var recent []metrics.SolverMetrics
	const window = 20

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		result.WarningCount += strings.Count(strings.ToLower(line), "warning")

		if m := presolvePattern.FindStringSubmatch(line); m != nil {
			rows, _ := strconv.Atoi(m[1])
			cols, _ := strconv.Atoi(m[2])
			result.Presolve = &PresolveReductions{Rows: rows, Columns: cols}
			continue
		}

		if record := parser.ParseLine(line); record != nil {
			result.ParsedRecords++
			result.Final = record
			recent = append(recent, *record)
			if len(recent) > window {
				recent = recent[1:]
			}
			continue
		}

		// Final model status, in the order the solver reports matters.
		switch {
		case strings.Contains(line, "Optimal"):
			result.Status = metrics.StatusOptimal
		case strings.Contains(line, "Infeasible"):
			result.Status = metrics.StatusInfeasible
		case strings.Contains(line, "Unbounded"):
			result.Status = metrics.StatusUnbounded
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if len(recent) >= 3 {
		iterations := make([]int, len(recent))
		primal := make([]float64, len(recent))
		dual := make([]float64, len(recent))
		for i, m := range recent {
			iterations[i] = m.Iteration
			primal[i] = m.PrimalInf
			dual[i] = m.DualInf
		}
		result.PrimalRate = analysis.FitLogSlope(primal, iterations)
		result.DualRate = analysis.FitLogSlope(dual, iterations)
	}

	return result, nil
}
