package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MaykThewessen/highsmon/internal/export"
	"github.com/MaykThewessen/highsmon/internal/monitor"
	"github.com/MaykThewessen/highsmon/internal/source"
)

// RunConfig holds configuration for the dashboard pipeline.
type RunConfig struct {
	Source   source.Source
	Monitor  *monitor.Monitor
	Exporter *export.Exporter
}

// Run starts the dashboard over a live source. Blocks until the run finishes
// or the user quits; the caller prints the final summary afterwards.
func Run(ctx context.Context, cfg *RunConfig) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(cfg.Monitor, cfg.Source.Name())
	program := tea.NewProgram(model, tea.WithAltScreen())

	ch, err := cfg.Source.Start(ctx)
	if err != nil {
		return fmt.Errorf("tui: start source: %w", err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			var line source.Line
			var ok bool
			select {
			case <-ctx.Done():
				// Quit path; a blocked source must not hold up wg.Wait.
				return
			case line, ok = <-ch:
				if !ok {
					program.Send(DoneMsg{})
					return
				}
			}

			if line.Replayed {
				cfg.Monitor.Prime(line.Text)
				continue
			}

			ev, status := cfg.Monitor.Observe(line.Text)
			if status.Terminal() {
				program.Send(StatusMsg(status))
				return
			}
			if ev == nil {
				continue
			}

			if cfg.Exporter != nil {
				cfg.Exporter.Observe(ev)
			}
			program.Send(EventMsg(*ev))
		}
	}()

	_, err = program.Run()

	// Ensure the source is stopped and the consumer finishes.
	cancel()
	wg.Wait()

	return err
}
