// Package plotting renders convergence charts from parsed solver metrics.
package plotting

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/MaykThewessen/highsmon/internal/metrics"
)

var (
	primalColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	dualColor   = color.RGBA{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

// Convergence writes a log-scale chart of primal and dual infeasibility
// versus iteration to outPath (format chosen by extension, e.g. .png).
func Convergence(records []metrics.SolverMetrics, title, outPath string) error {
	primal := series(records, func(m metrics.SolverMetrics) float64 { return m.PrimalInf })
	dual := series(records, func(m metrics.SolverMetrics) float64 { return m.DualInf })
	if len(primal) == 0 && len(dual) == 0 {
		return fmt.Errorf("no positive infeasibility values to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Infeasibility"
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	p.Add(plotter.NewGrid())

	if len(primal) > 0 {
		line, err := plotter.NewLine(primal)
		if err != nil {
			return fmt.Errorf("primal series: %w", err)
		}
		line.Color = primalColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("primal infeasibility", line)
	}
	if len(dual) > 0 {
		line, err := plotter.NewLine(dual)
		if err != nil {
			return fmt.Errorf("dual series: %w", err)
		}
		line.Color = dualColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add("dual infeasibility", line)
	}
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, outPath); err != nil {
		return fmt.Errorf("save chart %s: %w", outPath, err)
	}
	return nil
}

// series extracts positive values as XY points; log-scale axes cannot take
// zero or negative values.
func series(records []metrics.SolverMetrics, value func(metrics.SolverMetrics) float64) plotter.XYs {
	var pts plotter.XYs
	for _, m := range records {
		v := value(m)
		if v > 0 {
			pts = append(pts, plotter.XY{X: float64(m.Iteration), Y: v})
		}
	}
	return pts
}
