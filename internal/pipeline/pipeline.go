// Package pipeline orchestrates Source → Monitor → Reporter processing.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/MaykThewessen/highsmon/internal/export"
	"github.com/MaykThewessen/highsmon/internal/monitor"
	"github.com/MaykThewessen/highsmon/internal/report"
	"github.com/MaykThewessen/highsmon/internal/source"
)

// reportEvery is the iteration modulo at which periodic status blocks are
// emitted; warnings force a block regardless.
const reportEvery = 10

// Config holds pipeline configuration.
type Config struct {
	Source    source.Source
	Monitor   *monitor.Monitor
	Reporters []report.Reporter
	Exporter  *export.Exporter // optional Prometheus gauges
}

// Run executes the monitoring loop: reads lines from the source, feeds them
// to the monitor, and reports status. Blocks until a terminal status line is
// seen, the source is exhausted, or ctx is cancelled. Cancellation still
// produces the final summary from whatever history was accumulated.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.Source == nil {
		return fmt.Errorf("pipeline: source is required")
	}
	if cfg.Monitor == nil {
		return fmt.Errorf("pipeline: monitor is required")
	}

	ch, err := cfg.Source.Start(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: start source: %w", err)
	}

	// Cancellation must fall through to the summary even when the source
	// is blocked on a quiet reader and never closes the channel.
loop:
	for {
		var line source.Line
		var ok bool
		select {
		case <-ctx.Done():
			break loop
		case line, ok = <-ch:
			if !ok {
				break loop
			}
		}

		// Pre-existing file content fills history without display.
		if line.Replayed {
			cfg.Monitor.Prime(line.Text)
			continue
		}

		ev, status := cfg.Monitor.Observe(line.Text)
		if status.Terminal() {
			break
		}
		if ev == nil {
			continue
		}

		if cfg.Exporter != nil {
			cfg.Exporter.Observe(ev)
		}

		if ev.Metrics.Iteration%reportEvery == 0 || len(ev.Warnings) > 0 {
			for _, r := range cfg.Reporters {
				if err := r.Report(ev); err != nil {
					return fmt.Errorf("pipeline: report to %s: %w", r.Name(), err)
				}
			}
		}
	}

	summary := cfg.Monitor.Summary()
	if summary == nil {
		summary = &monitor.Summary{
			Status:  cfg.Monitor.Status(),
			Runtime: time.Since(cfg.Monitor.StartTime()),
		}
	}

	for _, r := range cfg.Reporters {
		if err := r.Summary(summary); err != nil {
			return fmt.Errorf("pipeline: summary to %s: %w", r.Name(), err)
		}
		_ = r.Flush()
		_ = r.Close()
	}

	if cfg.Exporter != nil {
		cfg.Exporter.Close()
	}

	return nil
}
