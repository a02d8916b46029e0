// Package export publishes solver progress as Prometheus metrics.
package export

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MaykThewessen/highsmon/internal/monitor"
)

// Exporter serves solver gauges on /metrics. Each exporter owns its own
// registry so several monitors can export side by side in one process.
type Exporter struct {
	registry *prometheus.Registry
	server   *http.Server

	iteration  prometheus.Gauge
	primalInf  prometheus.Gauge
	dualInf    prometheus.Gauge
	objective  prometheus.Gauge
	primalRate prometheus.Gauge
	dualRate   prometheus.Gauge
	records    prometheus.Counter
	warnings   prometheus.Counter
}

// New creates an exporter listening on addr (e.g. ":9186").
func New(addr string) *Exporter {
	registry := prometheus.NewRegistry()

	e := &Exporter{
		registry: registry,
		iteration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "highsmon_iteration",
			Help: "Most recent solver iteration number.",
		}),
		primalInf: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "highsmon_primal_infeasibility",
			Help: "Most recent primal infeasibility.",
		}),
		dualInf: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "highsmon_dual_infeasibility",
			Help: "Most recent dual infeasibility.",
		}),
		objective: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "highsmon_objective_value",
			Help: "Most recent objective value, when the log reports one.",
		}),
		primalRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "highsmon_primal_convergence_rate",
			Help: "Primal convergence rate in log10 units per iteration.",
		}),
		dualRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "highsmon_dual_convergence_rate",
			Help: "Dual convergence rate in log10 units per iteration.",
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "highsmon_records_total",
			Help: "Total accepted metrics records.",
		}),
		warnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "highsmon_warnings_total",
			Help: "Total warnings flagged by the issue detector.",
		}),
	}

	registry.MustRegister(
		e.iteration, e.primalInf, e.dualInf, e.objective,
		e.primalRate, e.dualRate, e.records, e.warnings,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	e.server = &http.Server{Addr: addr, Handler: mux}

	return e
}

// Start begins serving /metrics in the background.
func (e *Exporter) Start() {
	go func() {
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			// The exporter is best-effort observability; a bind failure
			// must not take the monitor down.
			return
		}
	}()
}

// Observe updates the gauges from one monitor event.
func (e *Exporter) Observe(ev *monitor.Event) {
	e.iteration.Set(float64(ev.Metrics.Iteration))
	e.primalInf.Set(ev.Metrics.PrimalInf)
	e.dualInf.Set(ev.Metrics.DualInf)
	if ev.Metrics.Objective != nil {
		e.objective.Set(*ev.Metrics.Objective)
	}
	if ev.Stats.PrimalRate != nil {
		e.primalRate.Set(*ev.Stats.PrimalRate)
	}
	if ev.Stats.DualRate != nil {
		e.dualRate.Set(*ev.Stats.DualRate)
	}
	e.records.Inc()
	e.warnings.Add(float64(len(ev.Warnings)))
}

// Registry exposes the underlying registry, mainly for tests.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Close shuts the metrics server down.
func (e *Exporter) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = e.server.Shutdown(ctx)
}
