// Package monitor ties line classification, history, and convergence
// analysis into one solver-run monitor.
package monitor

import (
	"sync/atomic"
	"time"

	"github.com/MaykThewessen/highsmon/internal/analysis"
	"github.com/MaykThewessen/highsmon/internal/buffer"
	"github.com/MaykThewessen/highsmon/internal/metrics"
	"github.com/MaykThewessen/highsmon/internal/parser"
)

// Config holds monitor tuning knobs.
type Config struct {
	// HistoryLength is the metrics ring-buffer capacity (default 50).
	HistoryLength int
	// StallThreshold is how many recent records the stall check inspects
	// (default 20).
	StallThreshold int
}

// Event is produced for every accepted metrics record.
type Event struct {
	Metrics  metrics.SolverMetrics
	Stats    metrics.ConvergenceStats
	Warnings []string
}

// Summary describes a finished (or interrupted) run.
type Summary struct {
	Status          metrics.Status
	TotalIterations int
	Runtime         time.Duration
	FinalPrimalInf  float64
	FinalDualInf    float64
	FinalObjective  *float64
	LinesSeen       uint64
	RecordsAccepted uint64
}

// Monitor owns the history buffer and last-update clock for exactly one
// solver run. It is driven by a single loop at a time; multiple monitors can
// run side by side since no state is shared between instances.
type Monitor struct {
	history  *buffer.Ring
	analyzer *analysis.Analyzer
	detector *analysis.Detector

	startTime  time.Time
	lastUpdate time.Time
	status     metrics.Status

	linesSeen       atomic.Uint64
	recordsAccepted atomic.Uint64
}

// New creates a monitor with the given configuration.
func New(cfg Config) *Monitor {
	if cfg.HistoryLength <= 0 {
		cfg.HistoryLength = 50
	}
	if cfg.StallThreshold <= 0 {
		cfg.StallThreshold = 20
	}

	history := buffer.NewRing(cfg.HistoryLength)
	now := time.Now()
	return &Monitor{
		history:    history,
		analyzer:   analysis.NewAnalyzer(history),
		detector:   analysis.NewDetector(history, cfg.StallThreshold),
		startTime:  now,
		lastUpdate: now,
		status:     metrics.StatusRunning,
	}
}

// Observe classifies one line of solver output. A terminal status
// announcement is reported via the returned status and ends the run; an
// accepted metrics record yields a non-nil event; anything else returns
// (nil, StatusRunning) and is ignored.
func (m *Monitor) Observe(line string) (*Event, metrics.Status) {
	m.linesSeen.Add(1)

	if status, ok := parser.DetectStatus(line); ok {
		m.status = status
		return nil, status
	}

	record := parser.ParseLine(line)
	if record == nil {
		return nil, metrics.StatusRunning
	}

	m.history.Push(*record)
	m.recordsAccepted.Add(1)

	stats := m.analyzer.Analyze(*record)
	warnings := m.detector.Detect(*record, stats, m.lastUpdate)
	m.lastUpdate = record.Timestamp

	return &Event{
		Metrics:  *record,
		Stats:    stats,
		Warnings: warnings,
	}, metrics.StatusRunning
}

// Prime appends a metrics record from pre-existing log content without
// analysis or display. Used when draining a file before tailing it.
func (m *Monitor) Prime(line string) {
	m.linesSeen.Add(1)
	if record := parser.ParseLine(line); record != nil {
		m.history.Push(*record)
		m.recordsAccepted.Add(1)
	}
}

// History exposes the metrics ring buffer for read-only consumers.
func (m *Monitor) History() *buffer.Ring {
	return m.history
}

// StartTime returns when monitoring began.
func (m *Monitor) StartTime() time.Time {
	return m.startTime
}

// Status returns the last observed solver status.
func (m *Monitor) Status() metrics.Status {
	return m.status
}

// Summary reports the final run state from whatever history was accumulated.
// Returns nil when no metrics were ever accepted.
func (m *Monitor) Summary() *Summary {
	last := m.history.Latest()
	if last == nil {
		return nil
	}
	return &Summary{
		Status:          m.status,
		TotalIterations: last.Iteration,
		Runtime:         last.Timestamp.Sub(m.startTime),
		FinalPrimalInf:  last.PrimalInf,
		FinalDualInf:    last.DualInf,
		FinalObjective:  last.Objective,
		LinesSeen:       m.linesSeen.Load(),
		RecordsAccepted: m.recordsAccepted.Load(),
	}
}
