package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"
)

// Registers isolates callers from *prometheus.Registry so tests can pass their own.
type Registers interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// promRegistry wraps *prometheus.Registry and panics on duplicate MustRegister.
type promRegistry struct {
	registry *prometheus.Registry
}

// NewPromRegistry wraps an existing registry.
func NewPromRegistry(registry *prometheus.Registry) Registers {
	return &promRegistry{registry: registry}
}

// NewRegistry returns an empty registry, so /metrics carries only exporter series. With
// runtime set the Go runtime and process collectors are added.
func NewRegistry(runtime bool) Registers {
	reg := prometheus.NewRegistry()
	if runtime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return NewPromRegistry(reg)
}

func (p *promRegistry) MustRegister(cs ...prometheus.Collector) {
	for _, c := range cs {
		if err := p.registry.Register(c); err != nil {
			panic(err)
		}
	}
}

func (p *promRegistry) Register(c prometheus.Collector) error {
	return p.registry.Register(c)
}

func (p *promRegistry) Unregister(c prometheus.Collector) bool {
	return p.registry.Unregister(c)
}

func (p *promRegistry) Gather() ([]*dto.MetricFamily, error) {
	return p.registry.Gather()
}
