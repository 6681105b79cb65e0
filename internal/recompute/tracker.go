package recompute

import (
	"sync"
	"time"
)

// State is the freshness of a paper's stored score projections.
type State int

// Freshness states. Papers with no entry are implicitly Fresh.
const (
	StateFresh State = iota
	StateStale
	StateRecomputing
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateStale:
		return "stale"
	case StateRecomputing:
		return "recomputing"
	default:
		return "fresh"
	}
}

// DirtyTracker records which papers have activity newer than their stored
// scores. Marking is cheap and idempotent; a paper marked ten times between
// drains is recomputed once. Thread-safe.
type DirtyTracker struct {
	mu      sync.Mutex
	entries map[string]*entry
	timeNow func() time.Time // For testability
}

// entry is the tracked state of one paper.
type entry struct {
	state    State
	markedAt time.Time // When the paper first went stale in this cycle
	remarked bool      // Activity arrived while a recompute was in flight
}

// NewDirtyTracker creates an empty tracker.
func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{
		entries: make(map[string]*entry),
		timeNow: time.Now,
	}
}

// MarkStale records that a paper's stored scores are behind its activity.
// If a recompute for the paper is already in flight, the paper is flagged
// for another pass so the late activity is never lost.
func (t *DirtyTracker) MarkStale(paperID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[paperID]
	if !ok {
		t.entries[paperID] = &entry{state: StateStale, markedAt: t.timeNow()}
		return
	}
	if e.state == StateRecomputing {
		e.remarked = true
		return
	}
	e.state = StateStale
}

// Claim moves every paper stale for at least minAge into Recomputing and
// returns the claimed IDs. The age threshold is the dispatch delay: it lets
// the triggering write settle before the recompute reads it.
func (t *DirtyTracker) Claim(minAge time.Duration) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.timeNow()
	var claimed []string
	for id, e := range t.entries {
		if e.state != StateStale {
			continue
		}
		if now.Sub(e.markedAt) < minAge {
			continue
		}
		e.state = StateRecomputing
		e.remarked = false
		claimed = append(claimed, id)
	}
	return claimed
}

// MarkFresh records a successful recompute. If activity arrived while the
// recompute ran, the paper goes straight back to Stale instead.
func (t *DirtyTracker) MarkFresh(paperID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[paperID]
	if !ok {
		return
	}
	if e.remarked {
		e.state = StateStale
		e.markedAt = t.timeNow()
		e.remarked = false
		return
	}
	delete(t.entries, paperID)
}

// MarkFailed returns a paper to Stale after a failed recompute so the next
// drain retries it. Stored values stay at last known good.
func (t *DirtyTracker) MarkFailed(paperID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[paperID]
	if !ok {
		return
	}
	e.state = StateStale
	e.remarked = false
}

// StateOf returns the tracked state of a paper.
func (t *DirtyTracker) StateOf(paperID string) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[paperID]; ok {
		return e.state
	}
	return StateFresh
}

// Len returns the number of papers that are not fresh.
func (t *DirtyTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
