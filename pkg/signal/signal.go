package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownTimeout bounds shutdownFunc once a signal arrived.
const ShutdownTimeout = 5 * time.Second

// WaitForShutdown blocks until SIGINT or SIGTERM, or until ctx ends, then runs shutdownFunc
// for at most ShutdownTimeout.
func WaitForShutdown(ctx context.Context, logger *zap.Logger, shutdownFunc func(context.Context) error) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("service running, waiting for SIGINT/SIGTERM")
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("context done, shutting down", zap.Error(ctx.Err()))
	}

	shutdown(logger, shutdownFunc)
}

func shutdown(logger *zap.Logger, shutdownFunc func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- shutdownFunc(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return
		}
		logger.Info("shutdown completed")
	case <-ctx.Done():
		logger.Warn("shutdown timeout exceeded", zap.Duration("timeout", ShutdownTimeout))
	}
}
