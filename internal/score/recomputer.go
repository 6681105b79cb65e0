package score

import (
	"fmt"
	"time"
)

// VoteCounter supplies the vote tallies a recompute reads from.
type VoteCounter interface {
	VoteCounts(paperID string) (upvotes, downvotes int, err error)
}

// DiscussionCounter supplies the discussion tallies a recompute reads from.
type DiscussionCounter interface {
	DiscussionCounts(paperID string) (threads, comments int, err error)
}

// Store is the slice of the paper repository the recomputer writes to.
type Store interface {
	UploadedAt(id string) (time.Time, error)
	// UpdateScores reports whether anything was actually written, so
	// callers can skip cache invalidation for no-op recomputes.
	UpdateScores(id string, score int, hotScore float64) (bool, error)
	UpdateDiscussionCount(id string, count int) error
}

// Result describes the outcome of a single recompute.
type Result struct {
	Score           int
	HotScore        float64
	DiscussionCount int
	Changed         bool // Whether the stored values differed from the derived ones
}

// Recomputer re-derives a paper's score projections from the vote and
// discussion sources of truth. Recomputing is idempotent: running it twice
// with no intervening activity writes nothing the second time.
type Recomputer struct {
	votes       VoteCounter
	discussions DiscussionCounter
	store       Store
	params      *Params
	timeNow     func() time.Time // For testability
}

// NewRecomputer creates a recomputer. A nil params uses the defaults.
func NewRecomputer(votes VoteCounter, discussions DiscussionCounter, store Store, params *Params) *Recomputer {
	if params == nil {
		params = DefaultParams()
	}
	return &Recomputer{
		votes:       votes,
		discussions: discussions,
		store:       store,
		params:      params,
		timeNow:     time.Now,
	}
}

// Recompute re-derives and persists the score, hot score, and discussion
// count for one paper.
func (r *Recomputer) Recompute(paperID string) (Result, error) {
	up, down, err := r.votes.VoteCounts(paperID)
	if err != nil {
		return Result{}, fmt.Errorf("counting votes: %w", err)
	}

	threads, comments, err := r.discussions.DiscussionCounts(paperID)
	if err != nil {
		return Result{}, fmt.Errorf("counting discussions: %w", err)
	}

	uploadedAt, err := r.store.UploadedAt(paperID)
	if err != nil {
		return Result{}, fmt.Errorf("loading upload time: %w", err)
	}

	netScore := Score(up, down)
	discussionCount := threads + comments
	hot := HotScore(netScore, discussionCount, uploadedAt, r.timeNow(), r.params)

	changed, err := r.store.UpdateScores(paperID, netScore, hot)
	if err != nil {
		return Result{}, fmt.Errorf("persisting scores: %w", err)
	}
	if err := r.store.UpdateDiscussionCount(paperID, discussionCount); err != nil {
		return Result{}, fmt.Errorf("persisting discussion count: %w", err)
	}

	return Result{
		Score:           netScore,
		HotScore:        hot,
		DiscussionCount: discussionCount,
		Changed:         changed,
	}, nil
}
