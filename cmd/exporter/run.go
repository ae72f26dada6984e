package exporter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ps-net-stats/cmd/server"
	"github.com/ps-net-stats/pkg/collector"
	"github.com/ps-net-stats/pkg/config"
	"github.com/ps-net-stats/pkg/logger"
	"github.com/ps-net-stats/pkg/metrics"
	"github.com/ps-net-stats/pkg/registers"
	"github.com/ps-net-stats/pkg/remote"
	"github.com/ps-net-stats/pkg/signal"
	"github.com/ps-net-stats/pkg/util"
	"github.com/ps-net-stats/pkg/version"
)

func run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfigWithCli(cmd)
	if err != nil {
		if errors.Is(err, config.ErrSettingsRead) {
			return exitErr(ExitReadFailure, err)
		}
		return exitErr(ExitUsage, err)
	}
	if cfg.Inventory == "" {
		return exitErr(ExitUsage, errors.New("missing cluster inventory, pass -c/--config"))
	}

	log, err := logger.InitLogger(&cfg.Log)
	if err != nil {
		return exitErr(ExitUsage, fmt.Errorf("init logger: %w", err))
	}
	defer func() { _ = logger.Sync() }()

	util.PrintBanner(cmd.OutOrStdout(), "ps-net-stats", "cyan", version.String())
	logHostFacts(ctx, log)

	executor, err := remote.New(cfg.SSH, log.Named("remote"))
	if err != nil {
		log.Error("remote transport unavailable", zap.String("transport", cfg.SSH.Transport), zap.Error(err))
		if errors.Is(err, remote.ErrDependencyMissing) {
			return exitErr(ExitDependency, err)
		}
		return exitErr(ExitUsage, err)
	}

	inv, err := config.LoadInventory(cfg.Inventory)
	if err != nil {
		log.Error("failed to load cluster inventory", zap.String("path", cfg.Inventory), zap.Error(err))
		if errors.Is(err, config.ErrInventoryParse) {
			return exitErr(ExitParseFailure, err)
		}
		return exitErr(ExitReadFailure, err)
	}
	for _, u := range inv.Unknown {
		log.Warn("ignoring unknown inventory entry", zap.Int("line", u.Line), zap.String("entry", u.Text))
	}

	reg := registers.New(executor, log.Named("registers"))
	if reg.RegisterAll(inv.Clusters) == 0 {
		err := fmt.Errorf("no valid cluster entries in %s", cfg.Inventory)
		log.Error("nothing to scrape", zap.Error(err))
		return exitErr(ExitNoEndpoints, err)
	}
	reg.ResolveNames(ctx, cfg.Collector.Timeout)
	for _, ep := range reg.Endpoints() {
		log.Debug("endpoint ready",
			zap.Int("index", ep.Index),
			zap.String("destination", ep.Target.Destination()),
			zap.String("cluster_name", ep.ClusterName))
	}

	promReg := metrics.NewRegistry(cfg.Server.RuntimeMetrics)
	opts := collector.Options{
		Timeout:     cfg.Collector.Timeout,
		Concurrency: cfg.Collector.Concurrency,
	}
	if cfg.Collector.SelfMetrics {
		opts.Metrics = metrics.NewMetricFactory(promReg)
	}
	netStats := collector.NewNetStatsCollector(reg, executor, opts, log.Named("collector"))
	promReg.MustRegister(netStats)

	httpServer := server.NewHTTPServer(cfg.Server, log.Named("http"), promReg)
	if err := httpServer.Start(); err != nil {
		log.Error("failed to start HTTP server", zap.Error(err))
		return exitErr(ExitUsage, err)
	}
	log.Info("exporter started",
		zap.String("version", version.Version),
		zap.String("listen_addr", httpServer.Addr()),
		zap.String("metrics_path", cfg.Server.MetricsPath),
		zap.Int("endpoints", reg.Len()),
		zap.String("collector", netStats.Name()))

	signal.WaitForShutdown(ctx, log, httpServer.Shutdown)
	return nil
}

func logHostFacts(ctx context.Context, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		log.Debug("host facts unavailable", zap.Error(err))
		return
	}
	log.Info("host facts",
		zap.String("hostname", info.Hostname),
		zap.String("os", info.OS),
		zap.String("platform", info.Platform+" "+info.PlatformVersion),
		zap.String("kernel", info.KernelVersion+"/"+info.KernelArch))
}
