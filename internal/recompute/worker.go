package recompute

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/openscholar/paperhub/internal/score"
	"github.com/openscholar/paperhub/internal/stats"
)

// Recomputer re-derives one paper's score projections.
type Recomputer interface {
	Recompute(paperID string) (score.Result, error)
}

// HubSource resolves the hub memberships of a paper, including removed
// papers, so their cached feeds can still be invalidated.
type HubSource interface {
	HubIDs(paperID string) ([]string, error)
}

// Invalidator drops the cached feed pages the given hubs appear under.
type Invalidator interface {
	InvalidateHubs(ctx context.Context, hubIDs []string) error
}

// Worker defaults.
const (
	DefaultInterval      = 5 * time.Second
	DefaultDispatchDelay = 5 * time.Second
	DefaultDrainTimeout  = 30 * time.Second
)

// WorkerConfig configures the recompute worker.
type WorkerConfig struct {
	// Interval is the duration between drain cycles.
	Interval time.Duration
	// DispatchDelay is how long a paper stays stale before it is eligible
	// for a drain. The delay lets the triggering write settle and batches
	// rapid vote bursts into one recompute.
	DispatchDelay time.Duration
	// Timeout bounds a single drain cycle.
	Timeout time.Duration
	// Logger for worker activity.
	Logger *slog.Logger
	// Metrics for recompute tracking.
	Metrics *Metrics
	// Stats tracks how many recomputes actually changed stored values.
	Stats *stats.RecomputeStats
}

// Worker drains the dirty tracker on an interval, recomputing scores and
// invalidating the affected feed caches. Delivery is at least once; the
// recompute itself is idempotent, so a duplicate pass writes nothing.
//
// Worker implements ActivityObserver: write paths call PaperActivity and
// the heavy lifting happens off the request path.
type Worker struct {
	config      WorkerConfig
	tracker     *DirtyTracker
	recomputer  Recomputer
	hubs        HubSource
	invalidator Invalidator

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWorker creates a recompute worker. A nil invalidator disables cache
// invalidation (scores still recompute).
func NewWorker(
	config WorkerConfig,
	tracker *DirtyTracker,
	recomputer Recomputer,
	hubs HubSource,
	invalidator Invalidator,
) *Worker {
	if config.Interval == 0 {
		config.Interval = DefaultInterval
	}
	if config.DispatchDelay == 0 {
		config.DispatchDelay = DefaultDispatchDelay
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultDrainTimeout
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Worker{
		config:      config,
		tracker:     tracker,
		recomputer:  recomputer,
		hubs:        hubs,
		invalidator: invalidator,
	}
}

// PaperActivity implements ActivityObserver by marking the paper stale.
// Safe to call from request handlers; it only touches the tracker.
func (w *Worker) PaperActivity(_ context.Context, paperID string) {
	w.tracker.MarkStale(paperID)
}

// Start begins the periodic drain loop.
// Returns immediately; the worker runs in a background goroutine.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for it to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	stopCh := w.stopCh
	doneCh := w.doneCh
	w.mu.Unlock()

	close(stopCh)
	<-doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// IsRunning returns whether the worker is currently running.
func (w *Worker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// run is the main loop for the worker.
func (w *Worker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.config.Logger.Info("recompute worker stopping due to context cancellation")
			return
		case <-w.stopCh:
			w.config.Logger.Info("recompute worker stopping due to stop signal")
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain claims every eligible stale paper and processes it. Exported so
// tests and single-process setups can force a cycle without the ticker.
func (w *Worker) Drain(parentCtx context.Context) {
	claimed := w.tracker.Claim(w.config.DispatchDelay)
	if len(claimed) == 0 {
		w.setQueueDepth()
		return
	}

	ctx, cancel := context.WithTimeout(parentCtx, w.config.Timeout)
	defer cancel()

	startTime := time.Now()
	var successCount int

	w.config.Logger.Debug("draining stale papers", "count", len(claimed))

	for i, paperID := range claimed {
		select {
		case <-ctx.Done():
			w.config.Logger.Error("recompute drain timeout exceeded",
				"processed", i,
				"total", len(claimed),
				"timeout", w.config.Timeout)
			// Unprocessed papers go back to stale for the next cycle.
			for _, id := range claimed[i:] {
				w.tracker.MarkFailed(id)
			}
			if w.config.Metrics != nil {
				w.config.Metrics.IncRecomputeErrors()
			}
			w.finishDrain(startTime, successCount, len(claimed))
			return
		default:
		}

		if w.process(ctx, paperID) {
			successCount++
		}
	}

	w.finishDrain(startTime, successCount, len(claimed))
}

// process recomputes one paper and invalidates its feed caches on change.
// Returns whether the recompute succeeded.
func (w *Worker) process(ctx context.Context, paperID string) bool {
	result, err := w.recomputer.Recompute(paperID)
	if err != nil {
		w.config.Logger.Error("failed to recompute paper scores",
			"paper_id", paperID,
			"error", err)
		w.tracker.MarkFailed(paperID)
		if w.config.Metrics != nil {
			w.config.Metrics.IncRecomputeErrors()
		}
		return false
	}

	if w.config.Metrics != nil {
		w.config.Metrics.IncRecomputeTotal()
	}
	if w.config.Stats != nil {
		if result.Changed {
			w.config.Stats.RecordChanged()
		} else {
			w.config.Stats.RecordUnchanged()
		}
	}

	// Unchanged scores keep the cached pages valid. Membership changes
	// (creation, removal, restore) invalidate through the owning service,
	// not through this path.
	if result.Changed && w.invalidator != nil {
		hubIDs, err := w.hubs.HubIDs(paperID)
		if err != nil {
			w.config.Logger.Error("failed to resolve paper hubs for invalidation",
				"paper_id", paperID,
				"error", err)
		} else if err := w.invalidator.InvalidateHubs(ctx, hubIDs); err != nil {
			// Best effort. Entries age out via TTL if the delete failed.
			w.config.Logger.Warn("feed cache invalidation failed",
				"paper_id", paperID,
				"error", err)
		}
	}

	w.tracker.MarkFresh(paperID)

	w.config.Logger.Debug("paper scores recomputed",
		"paper_id", paperID,
		"score", result.Score,
		"hot_score", result.HotScore,
		"changed", result.Changed)
	return true
}

// finishDrain records end-of-cycle metrics and logs.
func (w *Worker) finishDrain(startTime time.Time, successCount, total int) {
	duration := time.Since(startTime).Seconds()
	if w.config.Metrics != nil {
		w.config.Metrics.ObserveRecomputeDuration(duration)
		w.config.Metrics.SetLastRecomputeTimestamp(float64(time.Now().Unix()))
	}
	w.setQueueDepth()

	w.config.Logger.Info("recompute drain completed",
		"duration_seconds", duration,
		"papers_processed", successCount,
		"papers_failed", total-successCount)
}

func (w *Worker) setQueueDepth() {
	if w.config.Metrics != nil {
		w.config.Metrics.SetQueueDepth(float64(w.tracker.Len()))
	}
}

// SyncObserver recomputes and invalidates inline with the triggering write.
// Used in tests and single-process setups where the background worker is
// unwanted.
type SyncObserver struct {
	Recomputer  Recomputer
	Hubs        HubSource
	Invalidator Invalidator
	Logger      *slog.Logger
}

// PaperActivity implements ActivityObserver synchronously.
func (o *SyncObserver) PaperActivity(ctx context.Context, paperID string) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	result, err := o.Recomputer.Recompute(paperID)
	if err != nil {
		logger.Error("failed to recompute paper scores",
			"paper_id", paperID,
			"error", err)
		return
	}
	if !result.Changed || o.Invalidator == nil {
		return
	}

	hubIDs, err := o.Hubs.HubIDs(paperID)
	if err != nil {
		logger.Error("failed to resolve paper hubs for invalidation",
			"paper_id", paperID,
			"error", err)
		return
	}
	if err := o.Invalidator.InvalidateHubs(ctx, hubIDs); err != nil {
		logger.Warn("feed cache invalidation failed",
			"paper_id", paperID,
			"error", err)
	}
}
