// Package metrics builds the exporter's Prometheus registry and its self metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every series the exporter publishes.
const Namespace = "isilon_net_stats"

// MetricFactory creates metrics already registered on reg.
type MetricFactory struct {
	reg Registers
}

func NewMetricFactory(reg Registers) *MetricFactory {
	return &MetricFactory{reg: reg}
}

// NewEndpointFailuresTotal counts scrapes in which an endpoint returned no stats.
func (f *MetricFactory) NewEndpointFailuresTotal() *prometheus.CounterVec {
	return promauto.With(f.reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "exporter",
			Name:      "endpoint_failures_total",
			Help:      "Number of scrapes in which the endpoint returned no statistics",
		},
		[]string{"endpoint"},
	)
}

// NewParseMismatchesTotal counts netstat lines that did not fit the column layout.
func (f *MetricFactory) NewParseMismatchesTotal() *prometheus.CounterVec {
	return promauto.With(f.reg).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "exporter",
			Name:      "parse_mismatches_total",
			Help:      "Number of netstat output lines that could not be parsed",
		},
		[]string{"endpoint"},
	)
}
