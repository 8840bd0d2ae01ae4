package worker

import (
	"context"
	"time"

	"github.com/fuelrats/ratboard/pkg/service/edsm"
	"github.com/fuelrats/ratboard/pkg/utils/logging"
)

// EDSMRefreshWorker re-fetches stale cache entries in the background so
// chat lookups rarely pay the network round trip.
//
// Architecture assumptions:
// - Single bot process (no distributed coordination)
type EDSMRefreshWorker struct {
	client   *edsm.Client
	cache    *edsm.Cache
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewEDSMRefreshWorker creates a refresh worker. interval comes from the
// edsm_autorefresh setting.
func NewEDSMRefreshWorker(client *edsm.Client, cache *edsm.Cache, interval time.Duration) *EDSMRefreshWorker {
	return &EDSMRefreshWorker{
		client:   client,
		cache:    cache,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop without blocking startup
func (w *EDSMRefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("EDSM refresh worker starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *EDSMRefreshWorker) Stop() {
	logging.Default().Info("EDSM refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("EDSM refresh worker stopped")
}

func (w *EDSMRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.refresh(ctx)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("EDSM refresh worker context cancelled")
			return
		}
	}
}

// refresh re-fetches every stale entry. Failures are logged and retried on
// the next tick; a stale answer is still an answer.
func (w *EDSMRefreshWorker) refresh(ctx context.Context) {
	stale := w.cache.Stale()
	if len(stale) == 0 {
		return
	}

	logging.Default().Info("Refreshing stale EDSM entries", "count", len(stale))
	for _, name := range stale {
		if err := w.client.Refresh(ctx, name); err != nil {
			logging.Default().Warn("EDSM refresh failed (will retry next interval)",
				"system", name, "error", err.Error())
		}
	}
}
