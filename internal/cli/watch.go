package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MaykThewessen/highsmon/internal/config"
	"github.com/MaykThewessen/highsmon/internal/export"
	"github.com/MaykThewessen/highsmon/internal/monitor"
	"github.com/MaykThewessen/highsmon/internal/pipeline"
	"github.com/MaykThewessen/highsmon/internal/report"
	"github.com/MaykThewessen/highsmon/internal/source"
	"github.com/MaykThewessen/highsmon/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch [logfile]",
	Short: "Monitor solver output from a log file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src source.Source
	if len(args) == 1 {
		path := args[0]
		err := source.WaitForFile(ctx, path, func(p string) {
			fmt.Printf("Waiting for file %q to be created...\n", p)
		})
		if err != nil {
			// Interrupted while waiting; nothing was monitored.
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		src = source.NewFileSource(path, true)
	} else {
		src = source.NewStdinSource()
	}

	return monitorSource(ctx, cfg, src)
}

// monitorSource runs the streaming loop over any source, honoring the
// resolved configuration. Shared by watch and run.
func monitorSource(ctx context.Context, cfg *config.Config, src source.Source) error {
	mon := monitor.New(monitor.Config{
		HistoryLength:  cfg.History,
		StallThreshold: cfg.StallThreshold,
	})

	var exporter *export.Exporter
	if cfg.MetricsAddr != "" {
		exporter = export.New(cfg.MetricsAddr)
		exporter.Start()
	}

	if flagTUI {
		err := tui.Run(ctx, &tui.RunConfig{
			Source:   src,
			Monitor:  mon,
			Exporter: exporter,
		})
		if exporter != nil {
			exporter.Close()
		}
		if err != nil {
			return err
		}
		// The dashboard is gone; leave the summary on the plain terminal.
		if s := mon.Summary(); s != nil {
			return report.NewTerminalReporter(os.Stdout, !cfg.NoColor, mon).Summary(s)
		}
		return nil
	}

	reporters := []report.Reporter{
		report.NewTerminalReporter(os.Stdout, !cfg.NoColor, mon),
	}
	if cfg.JSONReport != "" {
		fr, err := report.NewFileReporter(cfg.JSONReport)
		if err != nil {
			return err
		}
		reporters = append(reporters, fr)
	}

	return pipeline.Run(ctx, &pipeline.Config{
		Source:    src,
		Monitor:   mon,
		Reporters: reporters,
		Exporter:  exporter,
	})
}
