package app

import (
	"context"
	"time"
)

// startSweeper launches the background cleanup loop. Each tick removes CREATED
// payments that were never linked to an article and session links nobody
// synced, once they are older than the grace period. The age cutoff is part of
// the delete query, so a payment completing mid-sweep is never touched.
func (app *Application) startSweeper(ctx context.Context) {
	app.wg.Add(1)

	go func() {
		defer app.wg.Done()

		ticker := time.NewTicker(app.config.Sweeper.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				app.sweepOnce(ctx)
			}
		}
	}()
}

func (app *Application) sweepOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := app.clock.Now().Add(-app.config.Sweeper.GracePeriod)

	payments, err := app.paymentRepo.DeleteStaleCreated(ctx, cutoff)
	if err != nil {
		app.logger.Error("sweeping stale payments failed", "error", err)
	}

	links, err := app.sessionLinkRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		app.logger.Error("sweeping session links failed", "error", err)
	}

	if payments > 0 || links > 0 {
		app.logger.Info("sweep complete", "stale_payments", payments, "session_links", links)
	}
}
