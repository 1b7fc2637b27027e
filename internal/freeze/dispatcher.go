// Package freeze dispatches asset-freeze actions triggered by high-risk
// decisions. Dispatch is fire-and-forget: the HTTP response that caused the
// freeze never waits on it, and a failed freeze is logged and counted but
// never propagated.
package freeze

import (
	"context"
	"log/slog"
	"time"

	"github.com/adekolu/walletguard/internal/metrics"
)

// DefaultTimeout bounds a single freeze attempt.
const DefaultTimeout = 30 * time.Second

// Freezer executes an asset freeze against the chain collaborator.
type Freezer interface {
	FreezeAsset(ctx context.Context, wallet string, assetID uint64) error
}

// Dispatcher schedules freeze actions on background goroutines.
type Dispatcher struct {
	freezer Freezer
	logger  *slog.Logger
	timeout time.Duration
}

// NewDispatcher creates a dispatcher. A nil freezer is allowed: actions are
// then logged only, which is the degraded mode when the chain client failed
// to initialize.
func NewDispatcher(f Freezer, logger *slog.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{freezer: f, logger: logger, timeout: timeout}
}

// Dispatch schedules a freeze for the wallet's asset and returns immediately.
// No retry: the action is an external collaborator's responsibility once
// handed off.
func (d *Dispatcher) Dispatch(wallet string, assetID uint64) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("freeze action panicked",
					"wallet", wallet,
					"asset_id", assetID,
					"panic", r,
				)
				metrics.FreezeActionsTotal.WithLabelValues("panic").Inc()
			}
		}()

		if d.freezer == nil {
			d.logger.Warn("freeze requested but no chain client configured",
				"wallet", wallet,
				"asset_id", assetID,
			)
			metrics.FreezeActionsTotal.WithLabelValues("skipped").Inc()
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.freezer.FreezeAsset(ctx, wallet, assetID); err != nil {
			d.logger.Error("freeze action failed",
				"wallet", wallet,
				"asset_id", assetID,
				"error", err,
			)
			metrics.FreezeActionsTotal.WithLabelValues("error").Inc()
			return
		}

		metrics.FreezeActionsTotal.WithLabelValues("ok").Inc()
	}()
}
