package sms

import "github.com/prometheus/client_golang/prometheus"

// Metrics of a Reassembler. Metrics implements prometheus.Collector.
type Metrics struct {
	parts      prometheus.Counter
	assembled  prometheus.Counter
	duplicates prometheus.Counter
	timeouts   prometheus.Counter
	pending    *prometheus.Desc
	store      *Store
}

// NewMetrics creates the metrics for a reassembler that uses the given store.
func NewMetrics(namespace string, store *Store) *Metrics {
	return &Metrics{
		parts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reassembly",
			Name:      "parts_total",
			Help:      "Number of received parts of concatenated messages",
		}),
		assembled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reassembly",
			Name:      "assembled_total",
			Help:      "Number of assembled messages",
		}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reassembly",
			Name:      "duplicates_total",
			Help:      "Number of parts that replaced a part with the same sequence number",
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reassembly",
			Name:      "timeouts_total",
			Help:      "Number of incomplete messages that were evicted",
		}),
		pending: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "reassembly", "pending"),
			"Number of incomplete messages that are currently collected",
			nil, nil,
		),
		store: store,
	}
}

// Describe sends the descriptions of all metrics to the given channel.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.parts.Describe(ch)
	m.assembled.Describe(ch)
	m.duplicates.Describe(ch)
	m.timeouts.Describe(ch)
	ch <- m.pending
}

// Collect sends the current values of all metrics to the given channel.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.parts.Collect(ch)
	m.assembled.Collect(ch)
	m.duplicates.Collect(ch)
	m.timeouts.Collect(ch)
	ch <- prometheus.MustNewConstMetric(m.pending, prometheus.GaugeValue, float64(m.store.Len()))
}

func (m *Metrics) partReceived() {
	if m != nil {
		m.parts.Inc()
	}
}

func (m *Metrics) messageAssembled() {
	if m != nil {
		m.assembled.Inc()
	}
}

func (m *Metrics) duplicateReceived() {
	if m != nil {
		m.duplicates.Inc()
	}
}

func (m *Metrics) timedOut() {
	if m != nil {
		m.timeouts.Inc()
	}
}
