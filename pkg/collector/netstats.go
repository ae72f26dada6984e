// Package collector turns per-interface netstat counters of every registered cluster into
// Prometheus samples. Each scrape runs the remote command afresh; nothing is cached.
package collector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ps-net-stats/pkg/metrics"
	"github.com/ps-net-stats/pkg/parser"
	"github.com/ps-net-stats/pkg/registers"
	"github.com/ps-net-stats/pkg/remote"
)

// Label names, in the order metric label values are passed.
const (
	LabelClusterName   = "cluster_name"
	LabelInterfaceName = "interface_name"
	LabelNodeLNN       = "node_lnn"
)

// EndpointSource supplies the endpoints to scrape, in registration order.
type EndpointSource interface {
	Endpoints() []registers.Endpoint
}

// Options tunes one collector.
type Options struct {
	// Timeout bounds the remote command per endpoint; zero means no limit.
	Timeout time.Duration
	// Concurrency is how many endpoints are scraped at once; below 1 means 1.
	Concurrency int
	// Metrics, when set, receives the exporter's own failure counters.
	Metrics *metrics.MetricFactory
}

// Labels identifies one series.
type Labels struct {
	ClusterName   string
	InterfaceName string
	NodeLNN       string
}

func (l Labels) values() []string {
	return []string{l.ClusterName, l.InterfaceName, l.NodeLNN}
}

// Sample one counter value of one interface.
type Sample struct {
	Kind   parser.CounterKind
	Name   string
	Help   string
	Labels Labels
	Value  float64
}

// MetricName returns the exposed name for kind, e.g. isilon_net_stats_ipkts.
func MetricName(kind parser.CounterKind) string {
	return metrics.Namespace + "_" + kind.Key()
}

// NetStatsCollector implements prometheus.Collector over an EndpointSource.
type NetStatsCollector struct {
	name   string
	src    EndpointSource
	exec   remote.Executor
	opts   Options
	logger *zap.Logger
	descs  []*prometheus.Desc

	endpointFailures *prometheus.CounterVec
	parseMismatches  *prometheus.CounterVec
}

func NewNetStatsCollector(src EndpointSource, exec remote.Executor, opts Options, logger *zap.Logger) *NetStatsCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	c := &NetStatsCollector{
		name:   "netstats-collector",
		src:    src,
		exec:   exec,
		opts:   opts,
		logger: logger,
		descs:  make([]*prometheus.Desc, len(parser.CounterKinds)),
	}
	for _, kind := range parser.CounterKinds {
		c.descs[kind] = prometheus.NewDesc(MetricName(kind), kind.Help(),
			[]string{LabelClusterName, LabelInterfaceName, LabelNodeLNN}, nil)
	}
	if opts.Metrics != nil {
		c.endpointFailures = opts.Metrics.NewEndpointFailuresTotal()
		c.parseMismatches = opts.Metrics.NewParseMismatchesTotal()
	}
	return c
}

// Name returns the collector name used in log lines.
func (c *NetStatsCollector) Name() string { return c.name }

// Describe sends the six counter descriptors.
func (c *NetStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range c.descs {
		ch <- d
	}
}

// Collect runs one scrape pass and sends every sample as a constant counter.
func (c *NetStatsCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.Samples(context.Background()) {
		m, err := prometheus.NewConstMetric(c.descs[s.Kind], prometheus.CounterValue, s.Value, s.Labels.values()...)
		if err != nil {
			c.logger.Warn("dropping invalid sample", zap.String("metric", s.Name), zap.Error(err))
			ch <- prometheus.NewInvalidMetric(c.descs[s.Kind], err)
			continue
		}
		ch <- m
	}
}

// Samples scrapes every endpoint once. Endpoints that fail are logged and left out; the
// result keeps registration order whatever the concurrency.
func (c *NetStatsCollector) Samples(ctx context.Context) []Sample {
	start := time.Now()
	log := c.logger.With(zap.String("scrape_id", uuid.NewString()))
	endpoints := c.src.Endpoints()

	perEndpoint := make([][]Sample, len(endpoints))
	var g errgroup.Group
	g.SetLimit(c.opts.Concurrency)
	for i, ep := range endpoints {
		i, ep := i, ep
		g.Go(func() error {
			perEndpoint[i] = c.scrapeEndpoint(ctx, log, ep)
			return nil
		})
	}
	_ = g.Wait()

	out, dups := flatten(perEndpoint)
	if dups > 0 {
		log.Warn("duplicate series dropped, two endpoints report the same cluster name",
			zap.Int("duplicates", dups))
	}
	log.Debug("scrape finished",
		zap.Int("endpoints", len(endpoints)),
		zap.Int("samples", len(out)),
		zap.Duration("duration", time.Since(start)))
	return out
}

func (c *NetStatsCollector) scrapeEndpoint(ctx context.Context, log *zap.Logger, ep registers.Endpoint) []Sample {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}
	log = log.With(zap.String("endpoint", ep.Target.Address), zap.String(LabelClusterName, ep.ClusterName))

	res, err := c.exec.Execute(ctx, ep.Target, remote.CmdNetStats)
	if err != nil {
		log.Warn("unable to retrieve stats for endpoint", zap.Error(err))
		if c.endpointFailures != nil {
			c.endpointFailures.WithLabelValues(ep.Target.Address).Inc()
		}
		return nil
	}

	stats := parser.ParseNetStats(res.Output, log)
	if stats.Mismatched > 0 && c.parseMismatches != nil {
		c.parseMismatches.WithLabelValues(ep.Target.Address).Add(float64(stats.Mismatched))
	}

	records := stats.Records()
	samples := make([]Sample, 0, len(records)*len(parser.CounterKinds))
	for _, rec := range records {
		labels := Labels{ClusterName: ep.ClusterName, InterfaceName: rec.Interface, NodeLNN: rec.Node}
		for _, kind := range parser.CounterKinds {
			v, err := parser.ToFloat(rec.Counter(kind))
			if err != nil {
				log.Warn("skipping counter",
					zap.String(LabelInterfaceName, rec.Interface),
					zap.String(LabelNodeLNN, rec.Node),
					zap.String("counter", kind.Key()),
					zap.Error(err))
				continue
			}
			samples = append(samples, Sample{
				Kind:   kind,
				Name:   MetricName(kind),
				Help:   kind.Help(),
				Labels: labels,
				Value:  v,
			})
		}
	}
	log.Debug("endpoint scraped",
		zap.Int("interfaces", len(records)),
		zap.Int("mismatched_lines", stats.Mismatched),
		zap.Duration("duration", res.Duration))
	return samples
}

type seriesKey struct {
	kind   parser.CounterKind
	labels Labels
}

// flatten concatenates in endpoint order, keeping the first sample of every series.
func flatten(perEndpoint [][]Sample) ([]Sample, int) {
	total := 0
	for _, s := range perEndpoint {
		total += len(s)
	}
	out := make([]Sample, 0, total)
	seen := make(map[seriesKey]struct{}, total)
	dups := 0
	for _, samples := range perEndpoint {
		for _, s := range samples {
			k := seriesKey{kind: s.Kind, labels: s.Labels}
			if _, ok := seen[k]; ok {
				dups++
				continue
			}
			seen[k] = struct{}{}
			out = append(out, s)
		}
	}
	return out, dups
}
