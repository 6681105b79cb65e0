// Package paper provides models and repository for research papers,
// including the stored ranking projections (score, hot score).
package paper

import (
	"errors"
	"time"
)

// Common errors for paper operations.
var (
	ErrPaperNotFound = errors.New("paper not found")
	ErrPaperRemoved  = errors.New("paper has been removed")
	ErrDuplicateDOI  = errors.New("a paper with this DOI already exists")
)

// Paper represents a research paper under discussion.
//
// Score, HotScore, and DiscussionCount are cached projections of the paper's
// vote and discussion history. They are never authoritative: the score
// calculator can re-derive them from durable vote state at any time, and
// re-derivation is idempotent.
type Paper struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	DOI      string `json:"doi,omitempty"`
	Abstract string `json:"abstract,omitempty"`

	// UploadedBy is the ID of the user who submitted the paper.
	UploadedBy string `json:"uploaded_by"`

	// HubIDs are the topic hubs this paper belongs to. Used as the
	// cache-invalidation and feed-filter dimension.
	HubIDs []string `json:"hub_ids,omitempty"`

	Score           int     `json:"score"`
	HotScore        float64 `json:"hot_score"`
	DiscussionCount int     `json:"discussion_count"`

	// IsRemoved is set by a moderation verdict. Removed papers are excluded
	// from reads and feeds but their row survives for audit purposes.
	IsRemoved bool `json:"is_removed"`

	UploadedAt time.Time `json:"uploaded_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InHub reports whether the paper belongs to the given hub.
func (p *Paper) InHub(hubID string) bool {
	for _, id := range p.HubIDs {
		if id == hubID {
			return true
		}
	}
	return false
}
