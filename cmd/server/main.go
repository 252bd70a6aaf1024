package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"duskward/pkg/adminapi"
	"duskward/pkg/auth"
	"duskward/pkg/combat"
	"duskward/pkg/config"
	"duskward/pkg/coordinator"
	"duskward/pkg/resource"
)

func main() {
	cfg := loadAndConfigureSystem()

	registry := prometheus.NewRegistry()
	resourceMgr := resource.NewManager(cfg.ResourceBaseURL, cfg.ResourceDefaultFallback)
	authMgr := auth.New(cfg.DebugAuthBypass)

	sweeperStop := make(chan struct{})
	go authMgr.RunSweeper(staleTokenSweepInterval, sweeperStop)

	game := coordinator.New(resourceMgr, authMgr, combat.DefaultRules, registry, cfg.DataDir)
	gameDone := make(chan struct{})
	go func() {
		game.Run()
		close(gameDone)
	}()

	admin := adminapi.New(game, adminapi.Options{
		Addr:                       cfg.AdminAddr,
		AdminToken:                 cfg.AdminToken,
		TickPeriod:                 cfg.TickPeriod(),
		Registry:                   registry,
		RateLimitEnabled:           cfg.RateLimitEnabled,
		RateLimitRequestsPerSecond: cfg.RateLimitRequestsPerSecond,
		RateLimitBurst:             cfg.RateLimitBurst,
	})

	executeServerLifecycle(cfg, game, admin, gameDone, sweeperStop)
}

// staleTokenSweepInterval is how often the auth manager's background
// sweeper clears expired pending-login tokens.
const staleTokenSweepInterval = 5 * time.Minute

// loadAndConfigureSystem loads configuration and sets up logging.
func loadAndConfigureSystem() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	configureLogging(cfg.LogLevel)
	logStartupInfo(cfg)
	return cfg
}

// configureLogging sets up the logging system based on configuration.
func configureLogging(logLevel string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.WithError(err).Warn("Invalid log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// logStartupInfo logs server startup information.
func logStartupInfo(cfg *config.Config) {
	logrus.WithFields(logrus.Fields{
		"adminAddr":       cfg.AdminAddr,
		"tickRate":        cfg.TickRate,
		"resourceBaseURL": cfg.ResourceBaseURL,
		"dataDir":         cfg.DataDir,
		"logLevel":        cfg.LogLevel,
	}).Info("Starting duskward game coordinator")
}

// executeServerLifecycle starts the admin HTTP listener and blocks until a
// shutdown signal arrives or the listener itself fails, then drains the
// coordinator and stops the listener in order. The player-facing TCP
// protocol has no accept loop here (out of scope, unchanged) — this
// process only ever drives the simulation coordinator and its admin
// surface.
func executeServerLifecycle(cfg *config.Config, game *coordinator.Game, admin *adminapi.Server, gameDone <-chan struct{}, sweeperStop chan<- struct{}) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	adminCtx, cancelAdmin := context.WithCancel(context.Background())
	adminErrChan := make(chan error, 1)
	go func() {
		adminErrChan <- admin.Run(adminCtx)
	}()

	select {
	case sig := <-sigChan:
		logrus.WithField("signal", sig).Info("Received shutdown signal")
	case err := <-adminErrChan:
		if err != nil {
			logrus.WithError(err).Error("Admin HTTP listener failed")
		}
	case <-gameDone:
		logrus.Info("Coordinator exited on its own (admin-triggered shutdown)")
	}

	performGracefulShutdown(cfg, game, cancelAdmin, adminErrChan, gameDone, sweeperStop)
}

// performGracefulShutdown asks the coordinator to drain every instance and
// waits up to cfg.ShutdownTimeout for its Run goroutine to return before
// forcing exit, then stops the admin listener.
func performGracefulShutdown(cfg *config.Config, game *coordinator.Game, cancelAdmin context.CancelFunc, adminErrChan chan error, gameDone <-chan struct{}, sweeperStop chan<- struct{}) {
	logrus.Info("Shutting down gracefully...")
	close(sweeperStop)

	select {
	case <-gameDone:
	default:
		game.Requests() <- coordinator.Shutdown{}
		select {
		case <-gameDone:
			logrus.Info("Coordinator shutdown completed")
		case <-time.After(cfg.ShutdownTimeout):
			logrus.Warn("Shutdown timeout exceeded, forcing exit")
		}
	}

	cancelAdmin()
	if err := <-adminErrChan; err != nil && err != context.Canceled {
		logrus.WithError(err).Warn("Error stopping admin HTTP listener")
	}
}
