package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the collector.
type Metrics struct {
	PacketsReceived prometheus.Counter
	PacketBytes     prometheus.Histogram
	DecodeErrors    prometheus.Counter
	UnknownEvents   prometheus.Counter

	EventsNormalized *prometheus.CounterVec // label: type
	DistillErrors    prometheus.Counter

	RowsAppended      prometheus.Counter
	AppendErrors      prometheus.Counter
	SnapshotPublishes prometheus.Counter
	SnapshotErrors    prometheus.Counter
	ForwardErrors     prometheus.Counter

	CollectorRunning prometheus.Gauge
}

// NewMetrics creates and registers all collector metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PacketsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest_collector",
			Name:      "packets_received_total",
			Help:      "Total UDP datagrams received.",
		}),
		PacketBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tempest_collector",
			Name:      "packet_bytes",
			Help:      "Size of received datagrams in bytes.",
			Buckets:   []float64{64, 128, 256, 512, 1024},
		}),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest_collector",
			Name:      "decode_errors_total",
			Help:      "Total datagrams that were not parseable as JSON.",
		}),
		UnknownEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest_collector",
			Name:      "unknown_events_total",
			Help:      "Total packets with a type absent from the schema registry.",
		}),
		EventsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tempest_collector",
			Name:      "events_normalized_total",
			Help:      "Successfully normalized events by type.",
		}, []string{"type"}),
		DistillErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest_collector",
			Name:      "distill_errors_total",
			Help:      "Qualifying observations dropped for missing conversion fields.",
		}),
		RowsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest_collector",
			Name:      "rows_appended_total",
			Help:      "Rows written to the timeseries log.",
		}),
		AppendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest_collector",
			Name:      "append_errors_total",
			Help:      "Timeseries append failures.",
		}),
		SnapshotPublishes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest_collector",
			Name:      "snapshot_publishes_total",
			Help:      "Successful atomic snapshot replacements.",
		}),
		SnapshotErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest_collector",
			Name:      "snapshot_errors_total",
			Help:      "Snapshot publish failures.",
		}),
		ForwardErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest_collector",
			Name:      "forward_errors_total",
			Help:      "Kafka forward failures.",
		}),
		CollectorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tempest_collector",
			Name:      "running",
			Help:      "1 when the receive loop is active, 0 when shut down.",
		}),
	}

	prometheus.MustRegister(
		m.PacketsReceived,
		m.PacketBytes,
		m.DecodeErrors,
		m.UnknownEvents,
		m.EventsNormalized,
		m.DistillErrors,
		m.RowsAppended,
		m.AppendErrors,
		m.SnapshotPublishes,
		m.SnapshotErrors,
		m.ForwardErrors,
		m.CollectorRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PacketsReceived:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "tempest_collector", Name: "packets_received_total"}),
		PacketBytes:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "tempest_collector", Name: "packet_bytes"}),
		DecodeErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "tempest_collector", Name: "decode_errors_total"}),
		UnknownEvents:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "tempest_collector", Name: "unknown_events_total"}),
		EventsNormalized:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "tempest_collector", Name: "events_normalized_total"}, []string{"type"}),
		DistillErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "tempest_collector", Name: "distill_errors_total"}),
		RowsAppended:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "tempest_collector", Name: "rows_appended_total"}),
		AppendErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "tempest_collector", Name: "append_errors_total"}),
		SnapshotPublishes: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "tempest_collector", Name: "snapshot_publishes_total"}),
		SnapshotErrors:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "tempest_collector", Name: "snapshot_errors_total"}),
		ForwardErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "tempest_collector", Name: "forward_errors_total"}),
		CollectorRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "tempest_collector", Name: "running"}),
	}
}
