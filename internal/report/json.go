package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/MaykThewessen/highsmon/internal/monitor"
)

// jsonReport is the serialization format for JSON Lines status output.
type jsonReport struct {
	Type                string   `json:"type"`
	Timestamp           string   `json:"timestamp"`
	Iteration           int      `json:"iteration"`
	PrimalInf           float64  `json:"primal_infeasibility"`
	DualInf             float64  `json:"dual_infeasibility"`
	Objective           *float64 `json:"objective,omitempty"`
	PrimalRate          *float64 `json:"primal_rate,omitempty"`
	DualRate            *float64 `json:"dual_rate,omitempty"`
	ObjectiveRate       *float64 `json:"objective_rate,omitempty"`
	ETA                 string   `json:"eta,omitempty"`
	IterationsRemaining *int     `json:"iterations_remaining,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
}

// jsonSummary is the serialization format for the final summary line.
type jsonSummary struct {
	Type            string   `json:"type"`
	Status          string   `json:"status"`
	TotalIterations int      `json:"total_iterations"`
	RuntimeSeconds  float64  `json:"runtime_seconds"`
	FinalPrimalInf  float64  `json:"final_primal_infeasibility"`
	FinalDualInf    float64  `json:"final_dual_infeasibility"`
	FinalObjective  *float64 `json:"final_objective,omitempty"`
	LinesSeen       uint64   `json:"lines_seen"`
	RecordsAccepted uint64   `json:"records_accepted"`
}

// JSONReporter writes one JSON object per status report (JSON Lines).
type JSONReporter struct {
	w   io.Writer
	enc *json.Encoder
}

// NewJSONReporter creates a JSON Lines reporter writing to the given writer.
func NewJSONReporter(w io.Writer) *JSONReporter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONReporter{
		w:   w,
		enc: json.NewEncoder(w),
	}
}

// Report serializes one status report as a single JSON line.
func (r *JSONReporter) Report(ev *monitor.Event) error {
	jr := jsonReport{
		Type:                "report",
		Timestamp:           ev.Metrics.Timestamp.Format(time.RFC3339Nano),
		Iteration:           ev.Metrics.Iteration,
		PrimalInf:           ev.Metrics.PrimalInf,
		DualInf:             ev.Metrics.DualInf,
		Objective:           ev.Metrics.Objective,
		PrimalRate:          ev.Stats.PrimalRate,
		DualRate:            ev.Stats.DualRate,
		ObjectiveRate:       ev.Stats.ObjectiveRate,
		IterationsRemaining: ev.Stats.IterationsRemaining,
		Warnings:            ev.Warnings,
	}
	if ev.Stats.EstimatedCompletion != nil {
		jr.ETA = ev.Stats.EstimatedCompletion.Format(time.RFC3339Nano)
	}
	return r.enc.Encode(jr)
}

// Summary serializes the final summary as a single JSON line.
func (r *JSONReporter) Summary(s *monitor.Summary) error {
	return r.enc.Encode(jsonSummary{
		Type:            "summary",
		Status:          s.Status.String(),
		TotalIterations: s.TotalIterations,
		RuntimeSeconds:  s.Runtime.Seconds(),
		FinalPrimalInf:  s.FinalPrimalInf,
		FinalDualInf:    s.FinalDualInf,
		FinalObjective:  s.FinalObjective,
		LinesSeen:       s.LinesSeen,
		RecordsAccepted: s.RecordsAccepted,
	})
}

// Flush is a no-op for the JSON reporter.
func (r *JSONReporter) Flush() error { return nil }

// Close is a no-op for the JSON reporter.
func (r *JSONReporter) Close() error { return nil }

// Name returns the reporter identifier.
func (r *JSONReporter) Name() string { return "json" }

// FileReporter writes JSON Lines reports to a file.
type FileReporter struct {
	inner Reporter
	file  *os.File
}

// NewFileReporter creates a JSON Lines reporter appending to the given path.
func NewFileReporter(path string) (*FileReporter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open report file %s: %w", path, err)
	}
	return &FileReporter{inner: NewJSONReporter(f), file: f}, nil
}

// Report delegates to the inner reporter.
func (r *FileReporter) Report(ev *monitor.Event) error {
	return r.inner.Report(ev)
}

// Summary delegates to the inner reporter.
func (r *FileReporter) Summary(s *monitor.Summary) error {
	return r.inner.Summary(s)
}

// Flush syncs the file to disk.
func (r *FileReporter) Flush() error {
	return r.file.Sync()
}

// Close flushes and closes the file.
func (r *FileReporter) Close() error {
	if err := r.Flush(); err != nil {
		return err
	}
	return r.file.Close()
}

// Name returns the reporter identifier.
func (r *FileReporter) Name() string {
	return "file:" + r.file.Name()
}
