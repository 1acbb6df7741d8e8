// Package metrics provides optional Prometheus instrumentation for a run:
// a counter of records emitted and a gauge of currently active entities,
// served over promhttp when --metrics-addr is given.
//
// This repurposes the teacher's prometheus/client_golang dependency from
// its original query-API use (pkg/monitoring/prometheus.Client) into the
// instrumentation side of the same library (promauto/promhttp), since a
// generator emits metrics about itself rather than querying someone
// else's.
package metrics

import (
	"context"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the set of instruments a run exposes.
type Metrics struct {
	registry        *prometheus.Registry
	recordsEmitted  prometheus.Counter
	activeEntities  prometheus.Gauge
	server          *http.Server
}

// New builds a fresh registry and the run's two instruments.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		recordsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "eventgen_records_emitted_total",
			Help: "Total number of records emitted to the sink.",
		}),
		activeEntities: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eventgen_active_entities",
			Help: "Number of currently active simulation entities.",
		}),
	}
}

// IncRecords increments the emitted-records counter by one.
func (m *Metrics) IncRecords() { m.recordsEmitted.Inc() }

// SetActiveEntities sets the active-entities gauge.
func (m *Metrics) SetActiveEntities(n int64) { m.activeEntities.Set(float64(n)) }

// Serve binds addr and starts serving /metrics in the background,
// returning once the listener is bound so a bad --metrics-addr value
// fails fast at startup rather than silently in a goroutine.
func (m *Metrics) Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	m.server = &http.Server{Handler: mux}
	go m.server.Serve(ln)
	return nil
}

// Shutdown gracefully stops the metrics HTTP server, if one was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
