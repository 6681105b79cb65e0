package feed

import (
	"fmt"
	"sort"
	"time"

	"github.com/openscholar/paperhub/internal/paper"
)

// PaperSource supplies the candidate papers for a feed. Removed papers are
// already excluded by the source.
type PaperSource interface {
	ListByHub(hubID string) ([]*paper.Paper, error)
	ListAll() ([]*paper.Paper, error)
}

// VoteWindowCounter supplies window-restricted vote tallies.
type VoteWindowCounter interface {
	VoteCountsInWindow(paperID string, start, end time.Time) (upvotes, downvotes int, err error)
}

// DiscussionWindowCounter supplies window-restricted discussion tallies.
type DiscussionWindowCounter interface {
	DiscussionCountsInWindow(paperID string, start, end time.Time) (int, error)
}

// Builder ranks papers for a feed request. It never recomputes hot scores
// on the read path; ranking reads the stored projections and the window
// counters only.
type Builder struct {
	papers      PaperSource
	votes       VoteWindowCounter
	discussions DiscussionWindowCounter
}

// NewBuilder creates a ranking query builder.
func NewBuilder(papers PaperSource, votes VoteWindowCounter, discussions DiscussionWindowCounter) *Builder {
	return &Builder{
		papers:      papers,
		votes:       votes,
		discussions: discussions,
	}
}

// ranked pairs a paper with its window-restricted ranking value.
type ranked struct {
	paper       *paper.Paper
	windowValue int
}

// Build returns the full ranked paper list for a scope, ordering, and
// window. An empty or "0" hub ID means the global feed. Unknown orderings
// fall back to all-time score descending rather than erroring.
func (b *Builder) Build(hubID string, ordering Ordering, window Window) ([]*paper.Paper, error) {
	papers, err := b.listScope(hubID)
	if err != nil {
		return nil, err
	}

	switch ordering {
	case OrderingHot:
		sortBy(papers, func(a, b *paper.Paper) int {
			return compareFloat(a.HotScore, b.HotScore)
		})
		return papers, nil

	case OrderingTopRated:
		if window.AllTime() {
			sortBy(papers, func(a, b *paper.Paper) int {
				return a.Score - b.Score
			})
			return papers, nil
		}
		entries := make([]ranked, len(papers))
		for i, p := range papers {
			up, down, err := b.votes.VoteCountsInWindow(p.ID, window.Start, window.End)
			if err != nil {
				return nil, fmt.Errorf("counting window votes for %s: %w", p.ID, err)
			}
			entries[i] = ranked{paper: p, windowValue: up - down}
		}
		return sortRanked(entries, func(a, b ranked) int {
			return a.paper.Score - b.paper.Score
		}), nil

	case OrderingMostDiscussed:
		if window.AllTime() {
			sortBy(papers, func(a, b *paper.Paper) int {
				return a.DiscussionCount - b.DiscussionCount
			})
			return papers, nil
		}
		entries := make([]ranked, len(papers))
		for i, p := range papers {
			count, err := b.discussions.DiscussionCountsInWindow(p.ID, window.Start, window.End)
			if err != nil {
				return nil, fmt.Errorf("counting window discussions for %s: %w", p.ID, err)
			}
			entries[i] = ranked{paper: p, windowValue: count}
		}
		return sortRanked(entries, func(a, b ranked) int {
			return a.paper.DiscussionCount - b.paper.DiscussionCount
		}), nil

	case OrderingNewest:
		if !window.AllTime() {
			filtered := papers[:0]
			for _, p := range papers {
				if !p.UploadedAt.Before(window.Start) && p.UploadedAt.Before(window.End) {
					filtered = append(filtered, p)
				}
			}
			papers = filtered
		}
		// The source already orders by upload time descending.
		return papers, nil

	default:
		// Unknown ordering: all-time score descending.
		sortBy(papers, func(a, b *paper.Paper) int {
			return a.Score - b.Score
		})
		return papers, nil
	}
}

// listScope returns the candidate papers for a hub, or all papers for the
// global scope.
func (b *Builder) listScope(hubID string) ([]*paper.Paper, error) {
	if ScopeForHub(hubID) == GlobalScope {
		return b.papers.ListAll()
	}
	return b.papers.ListByHub(hubID)
}

// sortBy sorts papers by cmp descending, breaking ties by paper ID
// ascending so pagination is deterministic.
func sortBy(papers []*paper.Paper, cmp func(a, b *paper.Paper) int) {
	sort.SliceStable(papers, func(i, j int) bool {
		if c := cmp(papers[i], papers[j]); c != 0 {
			return c > 0
		}
		return papers[i].ID < papers[j].ID
	})
}

// sortRanked sorts window-ranked entries by window value descending, then
// by the all-time tiebreak descending, then by paper ID ascending, and
// unwraps the papers.
func sortRanked(entries []ranked, tiebreak func(a, b ranked) int) []*paper.Paper {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].windowValue != entries[j].windowValue {
			return entries[i].windowValue > entries[j].windowValue
		}
		if c := tiebreak(entries[i], entries[j]); c != 0 {
			return c > 0
		}
		return entries[i].paper.ID < entries[j].paper.ID
	})

	papers := make([]*paper.Paper, len(entries))
	for i, e := range entries {
		papers[i] = e.paper
	}
	return papers
}

// compareFloat returns the sign of a - b as an int for use with sortBy.
func compareFloat(a, b float64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}
