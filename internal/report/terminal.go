package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/MaykThewessen/highsmon/internal/analysis"
	"github.com/MaykThewessen/highsmon/internal/monitor"
)

// color ANSI escape codes.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

const rule = "================================================================================"

// TerminalReporter writes human-readable status blocks with optional ANSI
// color. It reads run context (start time, history length) from the monitor
// but never mutates it.
type TerminalReporter struct {
	w     io.Writer
	color bool
	mon   *monitor.Monitor
}

// NewTerminalReporter creates a reporter that writes to the given writer.
func NewTerminalReporter(w io.Writer, color bool, mon *monitor.Monitor) *TerminalReporter {
	if w == nil {
		w = os.Stdout
	}
	return &TerminalReporter{w: w, color: color, mon: mon}
}

// Report renders one full status block for an accepted record.
func (r *TerminalReporter) Report(ev *monitor.Event) error {
	var sb strings.Builder
	m := ev.Metrics

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString(fmt.Sprintf("HiGHS Solver Monitor - %s\n", m.Timestamp.Format("15:04:05")))
	sb.WriteString(rule + "\n")

	sb.WriteString("Current Metrics:\n")
	sb.WriteString("   " + m.Format() + "\n")

	runtime := m.Timestamp.Sub(r.mon.StartTime())
	sb.WriteString(fmt.Sprintf("\nRuntime: %s\n", runtime.Round(time.Millisecond)))
	if r.mon.History().Len() > 1 && runtime.Seconds() > 0 {
		sb.WriteString(fmt.Sprintf("   Iterations/sec: %.2f\n", float64(m.Iteration)/runtime.Seconds()))
	}

	sb.WriteString("\nConvergence Analysis:\n")
	if ev.Stats.PrimalRate != nil {
		sb.WriteString(fmt.Sprintf("   Primal convergence rate: %.4f log10/iter\n", *ev.Stats.PrimalRate))
	}
	if ev.Stats.DualRate != nil {
		sb.WriteString(fmt.Sprintf("   Dual convergence rate: %.4f log10/iter\n", *ev.Stats.DualRate))
	}
	if ev.Stats.ObjectiveRate != nil {
		sb.WriteString(fmt.Sprintf("   Objective convergence rate: %.4f log10/iter\n", *ev.Stats.ObjectiveRate))
	}

	if ev.Stats.EstimatedCompletion != nil {
		eta := *ev.Stats.EstimatedCompletion
		sb.WriteString("\nEstimated Completion:\n")
		sb.WriteString(fmt.Sprintf("   ETA: %s\n", eta.Format("15:04:05")))
		sb.WriteString(fmt.Sprintf("   Time remaining: %s\n", eta.Sub(m.Timestamp).Round(time.Second)))
		if ev.Stats.IterationsRemaining != nil {
			sb.WriteString(fmt.Sprintf("   Iterations remaining: ~%d\n", *ev.Stats.IterationsRemaining))
		}
	}

	sb.WriteString("\nSolver Health:\n")
	sb.WriteString("   " + r.paint(healthLine(m.PrimalInf, m.DualInf), colorGreen) + "\n")

	if len(ev.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, w := range ev.Warnings {
			sb.WriteString("   " + r.paint(w, colorBold+colorYellow) + "\n")
		}
	} else {
		sb.WriteString("\n" + r.paint("No issues detected", colorGreen) + "\n")
	}

	sb.WriteString(rule + "\n")

	_, err := io.WriteString(r.w, sb.String())
	return err
}

// Summary renders the final run summary block.
func (r *TerminalReporter) Summary(s *monitor.Summary) error {
	var sb strings.Builder

	if s.Status.Terminal() {
		sb.WriteString(fmt.Sprintf("\nSolver completed with status: %s\n", r.paint(s.Status.String(), colorBold+colorCyan)))
	}
	sb.WriteString("\nFinal Summary:\n")
	sb.WriteString(fmt.Sprintf("   Total iterations: %d\n", s.TotalIterations))
	sb.WriteString(fmt.Sprintf("   Total runtime: %s\n", s.Runtime.Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("   Final primal infeasibility: %.6e\n", s.FinalPrimalInf))
	sb.WriteString(fmt.Sprintf("   Final dual infeasibility: %.6e\n", s.FinalDualInf))
	if s.FinalObjective != nil {
		sb.WriteString(fmt.Sprintf("   Final objective value: %.6e\n", *s.FinalObjective))
	}

	_, err := io.WriteString(r.w, sb.String())
	return err
}

// Flush is a no-op for terminal output.
func (r *TerminalReporter) Flush() error { return nil }

// Close is a no-op for terminal output.
func (r *TerminalReporter) Close() error { return nil }

// Name returns the reporter identifier.
func (r *TerminalReporter) Name() string { return "terminal" }

func (r *TerminalReporter) paint(s, color string) string {
	if !r.color {
		return s
	}
	return color + s + colorReset
}

// healthLine summarizes feasibility against the convergence tolerance.
func healthLine(primalInf, dualInf float64) string {
	switch {
	case primalInf < analysis.Tolerance && dualInf < analysis.Tolerance:
		return "Both primal and dual feasible"
	case primalInf < analysis.Tolerance:
		return "Primal feasible, dual converging"
	case dualInf < analysis.Tolerance:
		return "Dual feasible, primal converging"
	default:
		return "Converging to feasible solution"
	}
}
