package daemon

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// WindowLister returns the IDs of windows that still exist on the display.
type WindowLister func() ([]uint32, error)

// State is the compositor side of a reconciliation pass. Implementations
// run each call on the dispatch goroutine.
type State interface {
	// Managed returns the mapped windows.
	Managed(ctx context.Context) ([]uint32, error)
	// Forget destroys the record of a window the display no longer has.
	Forget(ctx context.Context, id uint32) error
	// CheckInvariants reports registry or focus drift.
	CheckInvariants(ctx context.Context) error
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval       time.Duration
	ForgetOrphaned bool
	Logger         *slog.Logger
}

// Reconciler periodically checks for state drift and corrects it.
type Reconciler struct {
	interval       time.Duration
	forgetOrphaned bool
	state          State
	listWindows    WindowLister
	logger         *slog.Logger

	drifts atomic.Int64
}

// NewReconciler creates a new reconciler with the given configuration.
// listWindows may be nil, in which case orphan detection is skipped.
func NewReconciler(cfg ReconcilerConfig, state State, listWindows WindowLister) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Reconciler{
		interval:       interval,
		forgetOrphaned: cfg.ForgetOrphaned,
		state:          state,
		listWindows:    listWindows,
		logger:         logger,
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
			r.reconcile(ctx)
		}
	}
}

// Drifts returns how many passes found a problem.
func (r *Reconciler) Drifts() int64 {
	return r.drifts.Load()
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile(ctx context.Context) {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.drifts.Add(1)
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	drifted := false

	if r.listWindows != nil {
		orphaned, err := r.orphans(ctx)
		if err != nil {
			r.logger.Error("reconciler: failed to compare windows", "error", err)
			return
		}
		for _, id := range orphaned {
			drifted = true
			r.logger.Warn("reconciler: orphaned window detected", "window", id)
			if !r.forgetOrphaned {
				continue
			}
			if err := r.state.Forget(ctx, id); err != nil {
				r.logger.Warn("reconciler: failed to forget window", "window", id, "error", err)
			}
		}
	}

	if err := r.state.CheckInvariants(ctx); err != nil {
		drifted = true
		r.logger.Warn("reconciler: invariant check failed", "error", err)
	}

	if drifted {
		r.drifts.Add(1)
	}
}

// orphans returns managed windows missing from the display.
func (r *Reconciler) orphans(ctx context.Context) ([]uint32, error) {
	managed, err := r.state.Managed(ctx)
	if err != nil {
		return nil, err
	}
	if len(managed) == 0 {
		return nil, nil
	}

	actual, err := r.listWindows()
	if err != nil {
		return nil, err
	}
	actualIDs := make(map[uint32]bool, len(actual))
	for _, id := range actual {
		actualIDs[id] = true
	}

	var orphaned []uint32
	for _, id := range managed {
		if !actualIDs[id] {
			orphaned = append(orphaned, id)
		}
	}
	return orphaned, nil
}

// ReconcileNow triggers an immediate reconciliation pass.
func (r *Reconciler) ReconcileNow(ctx context.Context) {
	r.reconcile(ctx)
}
