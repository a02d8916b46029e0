// Package report renders monitor output for the operator.
package report

import (
	"github.com/MaykThewessen/highsmon/internal/monitor"
)

// Reporter receives monitor events and the final run summary and writes
// them to an output destination. Reporters are display-only; they never
// affect monitor state.
type Reporter interface {
	// Report outputs one status block for an accepted metrics record.
	Report(ev *monitor.Event) error

	// Summary outputs the final run summary.
	Summary(s *monitor.Summary) error

	// Flush ensures all buffered output is written.
	Flush() error

	// Close releases resources held by the reporter.
	Close() error

	// Name returns a human-readable identifier for this reporter.
	Name() string
}
