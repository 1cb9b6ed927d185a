package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Shutdown stops all components gracefully.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)
	a.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.httpServer.Shutdown(ctx)
	if err != nil {
		a.logger.Error("http-server-shutdown-failed", zap.Error(err))
	}

	a.wg.Wait()
	a.cleanup()

	a.logger.Info("application-shutdown-complete")
	return err
}

func (a *App) cleanup() {
	if a.catalogStore != nil {
		err := a.catalogStore.Close()
		if err != nil {
			a.logger.Error("catalog-store-close-failed", zap.Error(err))
		}
	}

	if a.l1 != nil {
		a.l1.Close()
	}

	if a.redisStore != nil {
		err := a.redisStore.Close()
		if err != nil {
			a.logger.Error("redis-close-failed", zap.Error(err))
		}
	}
}
