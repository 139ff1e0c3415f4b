package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/moon-community/fto-queue-service/internal/service"
)

// SweeperWorker schedules the expiry sweep on a fixed interval. It is
// started only after the surrounding dependencies are confirmed ready, and
// Stop waits for an in-flight tick to finish before returning.
type SweeperWorker struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// StartSweeper registers and starts the periodic sweep.
func StartSweeper(sweeper *service.SweeperService, interval time.Duration, logger *zap.Logger) (*SweeperWorker, error) {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
		cron.Recover(cron.DiscardLogger),
	))

	spec := fmt.Sprintf("@every %s", interval)
	if _, err := c.AddFunc(spec, func() {
		sweeper.SweepOnce(context.Background())
	}); err != nil {
		return nil, fmt.Errorf("schedule sweeper: %w", err)
	}

	c.Start()
	logger.Info("expiry sweeper started", zap.Duration("interval", interval))
	return &SweeperWorker{cron: c, logger: logger}, nil
}

// Stop cancels future ticks and waits for a running one to complete.
func (w *SweeperWorker) Stop() {
	if w == nil || w.cron == nil {
		return
	}
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.logger.Info("expiry sweeper stopped")
}
