// Package stats provides utilities for tracking score write statistics.
package stats

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// RecomputeStats tracks cumulative statistics for score recompute writes.
// All operations are thread-safe using atomic counters.
type RecomputeStats struct {
	changed   int64 // Recomputes that wrote new score values
	unchanged int64 // Recomputes that matched the stored values
}

// NewRecomputeStats creates a new RecomputeStats instance.
func NewRecomputeStats() *RecomputeStats {
	return &RecomputeStats{}
}

// RecordChanged increments the changed counter.
func (s *RecomputeStats) RecordChanged() {
	atomic.AddInt64(&s.changed, 1)
}

// RecordUnchanged increments the unchanged counter.
func (s *RecomputeStats) RecordUnchanged() {
	atomic.AddInt64(&s.unchanged, 1)
}

// Changed returns the total number of recomputes that wrote new values.
func (s *RecomputeStats) Changed() int64 {
	return atomic.LoadInt64(&s.changed)
}

// Unchanged returns the total number of no-op recomputes.
func (s *RecomputeStats) Unchanged() int64 {
	return atomic.LoadInt64(&s.unchanged)
}

// Total returns the total number of recompute writes.
func (s *RecomputeStats) Total() int64 {
	return s.Changed() + s.Unchanged()
}

// Reset resets all counters to zero.
func (s *RecomputeStats) Reset() {
	atomic.StoreInt64(&s.changed, 0)
	atomic.StoreInt64(&s.unchanged, 0)
}

// String returns a human-readable summary of the statistics.
func (s *RecomputeStats) String() string {
	return fmt.Sprintf("changed=%d unchanged=%d total=%d", s.Changed(), s.Unchanged(), s.Total())
}

// LogSummary logs a summary of recompute statistics at INFO level.
// Useful for periodic reporting.
func (s *RecomputeStats) LogSummary(logger *slog.Logger) {
	logger.Info("recompute statistics",
		"changed", s.Changed(),
		"unchanged", s.Unchanged(),
		"total", s.Total(),
	)
}
