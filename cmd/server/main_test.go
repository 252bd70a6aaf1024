package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duskward/pkg/adminapi"
	"duskward/pkg/auth"
	"duskward/pkg/combat"
	"duskward/pkg/config"
	"duskward/pkg/coordinator"
	"duskward/pkg/resource"
)

func TestConfigureLogging(t *testing.T) {
	tests := []struct {
		name          string
		logLevel      string
		expectedLevel logrus.Level
	}{
		{name: "debug level", logLevel: "debug", expectedLevel: logrus.DebugLevel},
		{name: "info level", logLevel: "info", expectedLevel: logrus.InfoLevel},
		{name: "warn level", logLevel: "warn", expectedLevel: logrus.WarnLevel},
		{name: "error level", logLevel: "error", expectedLevel: logrus.ErrorLevel},
		{name: "invalid level falls back to info", logLevel: "invalid", expectedLevel: logrus.InfoLevel},
		{name: "empty level falls back to info", logLevel: "", expectedLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logrus.SetOutput(io.Discard)
			defer logrus.SetOutput(os.Stderr)

			configureLogging(tt.logLevel)
			assert.Equal(t, tt.expectedLevel, logrus.GetLevel())
		})
	}
}

func TestLogStartupInfo(t *testing.T) {
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	defer logrus.SetOutput(os.Stderr)

	cfg, err := config.Load()
	require.NoError(t, err)

	logStartupInfo(cfg)

	output := buf.String()
	assert.Contains(t, output, "Starting duskward game coordinator")
	assert.Contains(t, output, cfg.AdminAddr)
}

// newLifecycleTestGame builds a Game + adminapi.Server pair against an
// in-memory resource backend, mirroring pkg/adminapi's own test helper.
func newLifecycleTestGame(t *testing.T) (*coordinator.Game, *adminapi.Server) {
	t.Helper()

	resourceMgr := resource.NewManager("http://127.0.0.1:0", true)
	authMgr := auth.New(true)
	registry := prometheus.NewRegistry()

	game := coordinator.New(resourceMgr, authMgr, combat.DefaultRules, registry, t.TempDir())
	admin := adminapi.New(game, adminapi.Options{
		Addr:             "127.0.0.1:0",
		AdminToken:       "test-token",
		TickPeriod:       time.Second / 60,
		Registry:         registry,
		RateLimitEnabled: false,
	})
	return game, admin
}

// TestExecuteServerLifecycleShutdownSignal drives the full lifecycle with
// an immediate shutdown request through the coordinator, verifying it
// completes instead of blocking forever.
func TestExecuteServerLifecycleShutdownSignal(t *testing.T) {
	logrus.SetOutput(io.Discard)
	defer logrus.SetOutput(os.Stderr)

	game, admin := newLifecycleTestGame(t)
	cfg := &config.Config{}
	cfg.ShutdownTimeout = time.Second

	gameDone := make(chan struct{})
	go func() {
		game.Run()
		close(gameDone)
	}()

	sweeperStop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		executeServerLifecycle(cfg, game, admin, gameDone, sweeperStop)
		close(done)
	}()

	// Let the lifecycle's goroutines start, then let the coordinator exit
	// the way an admin-triggered /api/v1/shutdown would.
	time.Sleep(20 * time.Millisecond)
	game.Requests() <- coordinator.Shutdown{}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("executeServerLifecycle did not complete after coordinator shutdown")
	}
}

// TestPerformGracefulShutdownTimesOut verifies a stuck coordinator forces
// the shutdown path to give up rather than hang.
func TestPerformGracefulShutdownTimesOut(t *testing.T) {
	logrus.SetOutput(io.Discard)
	defer logrus.SetOutput(os.Stderr)

	game, admin := newLifecycleTestGame(t)
	cfg := &config.Config{}
	cfg.ShutdownTimeout = 50 * time.Millisecond

	// A Game whose Run goroutine is never started never drains its
	// Request channel, so gameDone never closes — performGracefulShutdown
	// must fall through on the timeout instead of blocking.
	gameDone := make(chan struct{})

	adminCtx, cancelAdmin := context.WithCancel(context.Background())
	adminErrChan := make(chan error, 1)
	go func() { adminErrChan <- admin.Run(adminCtx) }()

	sweeperStop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		performGracefulShutdown(cfg, game, cancelAdmin, adminErrChan, gameDone, sweeperStop)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("performGracefulShutdown did not time out as expected")
	}
}

func BenchmarkConfigureLogging(b *testing.B) {
	logrus.SetOutput(io.Discard)
	defer logrus.SetOutput(os.Stderr)

	for i := 0; i < b.N; i++ {
		configureLogging("info")
	}
}
