// Package cli wires the highsmon commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MaykThewessen/highsmon/internal/config"
)

var (
	cfgFile         string
	flagHistory     int
	flagStall       int
	flagJSONReport  string
	flagMetricsAddr string
	flagNoColor     bool
	flagTUI         bool

	rootCmd = &cobra.Command{
		Use:   "highsmon [logfile]",
		Short: "highsmon monitors HiGHS solver logs in real time",
		Long: `highsmon consumes HiGHS solver output, extracts per-iteration metrics,
computes convergence rates, estimates completion time, and flags solver
health issues.

With a logfile argument the file is tailed (waiting for it to appear if
necessary); without one, solver output is read from stdin.`,
		Args:         cobra.MaximumNArgs(1),
		RunE:         runWatch,
		SilenceUsage: true,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default .highsmon.yaml in the working directory)")
	rootCmd.PersistentFlags().IntVar(&flagHistory, "history", 50, "number of iterations to keep in history")
	rootCmd.PersistentFlags().IntVar(&flagStall, "stall-threshold", 20, "number of iterations to detect stalling")
	rootCmd.PersistentFlags().StringVar(&flagJSONReport, "json", "", "append JSON Lines status reports to this file")
	rootCmd.PersistentFlags().StringVar(&flagMetricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (e.g. :9186)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable ANSI color output")
	rootCmd.PersistentFlags().BoolVar(&flagTUI, "tui", false, "show a live dashboard instead of status blocks")
}

// settings resolves configuration: flags set on the command line override
// the config file and environment.
func settings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("history") {
		cfg.History = flagHistory
	}
	if flags.Changed("stall-threshold") {
		cfg.StallThreshold = flagStall
	}
	if flags.Changed("json") {
		cfg.JSONReport = flagJSONReport
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = flagMetricsAddr
	}
	if flags.Changed("no-color") {
		cfg.NoColor = flagNoColor
	}

	return cfg, nil
}
