// Package daemon keeps the shared peer state of a session tidy while pets
// come and go.
package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/deskpet/internal/peers"
	"github.com/1broseidon/deskpet/internal/platform"
)

// WindowLister returns the IDs of the windows that currently exist.
type WindowLister func() ([]platform.WindowID, error)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically drops registry entries whose pet is gone.
type Reconciler struct {
	interval    time.Duration
	janitor     *Janitor
	listWindows WindowLister
	logger      *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
// listWindows may be nil, in which case only dead processes are pruned.
func NewReconciler(cfg ReconcilerConfig, janitor *Janitor, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval:    interval,
		janitor:     janitor,
		listWindows: listWindows,
		logger:      logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	var keep func(peers.Entry) bool
	if r.listWindows != nil {
		ids, err := r.listWindows()
		if err != nil {
			r.logger.Error("reconciler: failed to list windows", "error", err)
			return
		}
		// An empty list means the display is going away; do not wipe the registry.
		if len(ids) > 0 {
			actual := make(map[platform.WindowID]bool, len(ids))
			for _, id := range ids {
				actual[id] = true
			}
			keep = func(e peers.Entry) bool { return actual[e.WindowID] }
		}
	}

	removed, err := r.janitor.registry.Prune(keep)
	if err != nil {
		r.logger.Error("reconciler: failed to prune registry", "error", err)
		return
	}
	for _, e := range removed {
		r.logger.Info("reconciler: orphaned peer detected",
			"window_id", e.WindowID,
			"ordinal", e.Ordinal,
			"pid", e.PID)
		r.janitor.HandlePetGone(e)
	}

	if err := r.janitor.CleanupStaleSockets(); err != nil {
		r.logger.Warn("reconciler: failed to cleanup stale sockets", "error", err)
	}
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
