package cli

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MaykThewessen/highsmon/internal/metrics"
	"github.com/MaykThewessen/highsmon/internal/parser"
	"github.com/MaykThewessen/highsmon/internal/plotting"
)

var (
	plotOut   string
	plotTitle string

	plotCmd = &cobra.Command{
		Use:   "plot <logfile>",
		Short: "Render a convergence chart from a solver log",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}
)

func init() {
	plotCmd.Flags().StringVarP(&plotOut, "out", "o", "convergence.png", "output image path")
	plotCmd.Flags().StringVar(&plotTitle, "title", "Solver convergence", "chart title")
	rootCmd.AddCommand(plotCmd)
}

func runPlot(cmd *cobra.Command, args []string) error {
	records, err := readRecords(args[0])
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("no metrics records found in %s", args[0])
	}

	if err := plotting.Convergence(records, plotTitle, plotOut); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d records)\n", plotOut, len(records))
	return nil
}

// readRecords parses every metrics row out of a log file.
func readRecords(path string) ([]metrics.SolverMetrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	defer f.Close()

	var records []metrics.SolverMetrics
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if m := parser.ParseLine(scanner.Text()); m != nil {
			records = append(records, *m)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return records, nil
}
