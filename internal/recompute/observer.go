// Package recompute provides the vote-triggered score recompute pipeline:
// an activity observer invoked after durable writes, a dirty tracker holding
// per-paper freshness state, and a background worker that re-derives scores
// and invalidates affected feed caches.
package recompute

import "context"

// ActivityObserver is notified synchronously after a durable write that
// affects a paper's ranking: a vote create/update/delete, a discussion
// write, a moderation removal, or a paper update.
//
// This is the explicit, testable replacement for implicit framework
// post-save hooks: the dependency between "vote committed" and "score
// updated" is a visible call at the write site.
type ActivityObserver interface {
	PaperActivity(ctx context.Context, paperID string)
}

// NoopObserver is an ActivityObserver that does nothing. Useful for tests
// and for wiring paths where recompute is intentionally disabled.
type NoopObserver struct{}

// PaperActivity implements ActivityObserver.
func (NoopObserver) PaperActivity(context.Context, string) {}
