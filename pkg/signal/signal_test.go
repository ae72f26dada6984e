package signal

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWaitForShutdownOnContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	WaitForShutdown(ctx, zap.New(core), func(ctx context.Context) error {
		called = true
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	})

	assert.True(t, called)
	assert.Equal(t, 1, logs.FilterMessage("shutdown completed").Len())
}

func TestWaitForShutdownOnSignal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	done := make(chan struct{})
	go func() {
		defer close(done)
		WaitForShutdown(context.Background(), zap.New(core), func(context.Context) error {
			return errors.New("listener busy")
		})
	}()

	// wait until the handler is installed
	assert.Eventually(t, func() bool {
		return logs.FilterMessage("service running, waiting for SIGINT/SIGTERM").Len() == 1
	}, time.Second, 5*time.Millisecond)
	assert.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForShutdown did not return")
	}
	assert.Equal(t, 1, logs.FilterMessage("graceful shutdown failed").Len())
}
