package exporter

import (
	"github.com/spf13/cobra"
)

func initServerFlags(root *cobra.Command) {
	f := root.PersistentFlags()

	f.String("server.addr", defaultCfg.Server.Addr, "-> HTTP listening address")
	f.String("server.metrics_path", defaultCfg.Server.MetricsPath, "-> Path the metrics are exposed on")
	f.Duration("server.read_timeout", defaultCfg.Server.ReadTimeout, "-> Read timeout duration")
	f.Duration("server.write_timeout", defaultCfg.Server.WriteTimeout, "-> Write timeout duration, must cover a full scrape")
	f.Duration("server.idle_timeout", defaultCfg.Server.IdleTimeout, "-> Idle connection timeout duration")
	f.Bool("server.runtime_metrics", defaultCfg.Server.RuntimeMetrics, "-> Also expose Go runtime and process metrics")
}
