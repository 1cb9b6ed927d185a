package app

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("environment", a.cfg.Environment),
		zap.String("log-level", a.cfg.LogLevel),
		zap.Bool("syncer-enabled", a.syncer != nil),
		zap.Bool("redis-backed", a.redisStore != nil))

	a.startComponents()

	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.String("coingecko-url", a.cfg.CoingeckoBaseURL))

	return a.waitForShutdown()
}

// SyncCatalog runs a single catalog refresh and returns, used by the sync
// subcommand.
func (a *App) SyncCatalog() error {
	if a.syncer == nil {
		return errors.New("catalog syncer not configured")
	}

	defer a.cleanup()
	return a.syncer.SyncOnce(a.ctx)
}

func (a *App) startComponents() {
	a.wg.Add(1)
	go a.runHTTPServer()

	if a.syncer != nil {
		a.wg.Add(1)
		go a.runSyncer()
	}
}

func (a *App) runHTTPServer() {
	defer a.wg.Done()
	err := a.httpServer.Start()
	if err != nil {
		a.logger.Error("http-server-error", zap.Error(err))
	}
}

func (a *App) runSyncer() {
	defer a.wg.Done()
	err := a.syncer.Run(a.ctx)
	if err != nil && !errors.Is(err, a.ctx.Err()) {
		a.logger.Error("catalog-syncer-error", zap.Error(err))
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
