package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MaykThewessen/highsmon/internal/metrics"
	"github.com/MaykThewessen/highsmon/internal/scan"
)

var scanCmd = &cobra.Command{
	Use:   "scan <logfile>",
	Short: "Analyze a finished solver log",
	Long: `Reads a completed solver log and reports the final model status,
presolve reductions, warning count, and tail convergence rates.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	if cfg.NoColor {
		color.NoColor = true
	}

	res, err := scan.File(args[0])
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	bold.Printf("Scan of %s\n\n", args[0])

	fmt.Printf("  Model status:        %s\n", statusColor(res.Status).Sprint(res.Status))
	fmt.Printf("  Parsed records:      %d\n", res.ParsedRecords)
	if res.WarningCount > 0 {
		fmt.Printf("  Solver warnings:     %s\n", color.YellowString("%d", res.WarningCount))
	} else {
		fmt.Printf("  Solver warnings:     0\n")
	}
	if res.Presolve != nil {
		fmt.Printf("  Presolve reductions: rows %d, columns %d\n", res.Presolve.Rows, res.Presolve.Columns)
	}

	if res.Final != nil {
		fmt.Printf("\n  Final record:\n    %s\n", res.Final.Format())
	}
	if res.PrimalRate != nil {
		fmt.Printf("  Tail primal rate:    %.4f log10/iter\n", *res.PrimalRate)
	}
	if res.DualRate != nil {
		fmt.Printf("  Tail dual rate:      %.4f log10/iter\n", *res.DualRate)
	}

	return nil
}

func statusColor(s metrics.Status) *color.Color {
	switch s {
	case metrics.StatusOptimal:
		return color.New(color.FgGreen, color.Bold)
	case metrics.StatusInfeasible, metrics.StatusUnbounded, metrics.StatusNumericalIssues:
		return color.New(color.FgRed, color.Bold)
	case metrics.StatusTimeLimit, metrics.StatusIterationLimit:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan)
	}
}
