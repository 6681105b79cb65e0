package vote

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for vote data operations.
type Repository interface {
	// Create inserts a new vote with a generated UUID.
	Create(v *Vote) error

	// UpdateType changes the direction of an existing vote in place.
	UpdateType(id string, voteType Type) error

	// GetByVoterPaper retrieves the single vote for a (voter, paper) pair.
	GetByVoterPaper(voterID, paperID string) (*Vote, error)

	// Delete removes the vote for a (voter, paper) pair and returns it.
	Delete(voterID, paperID string) (*Vote, error)

	// VoteCounts returns the all-time (upvotes, downvotes) for a paper.
	VoteCounts(paperID string) (upvotes, downvotes int, err error)

	// VoteCountsInWindow returns (upvotes, downvotes) created within
	// [start, end) for a paper.
	VoteCountsInWindow(paperID string, start, end time.Time) (upvotes, downvotes int, err error)
}

// pairKey builds the uniqueness key for a (voter, paper) pair. A null byte
// separator avoids collisions between concatenated IDs.
func pairKey(voterID, paperID string) string {
	return voterID + "\x00" + paperID
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu    sync.RWMutex
	votes map[string]*Vote  // UUID -> Vote
	pairs map[string]string // pairKey -> UUID
}

// NewInMemoryRepository creates a new in-memory vote repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		votes: make(map[string]*Vote),
		pairs: make(map[string]string),
	}
}

// Create inserts a new vote with a generated UUID.
// Returns ErrVoteExists if the (voter, paper) pair already has a vote;
// direction changes go through UpdateType instead.
func (r *InMemoryRepository) Create(v *Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(v.CreatedBy, v.PaperID)
	if _, exists := r.pairs[key]; exists {
		return ErrVoteExists
	}

	now := time.Now()
	v.ID = uuid.New().String()
	v.CreatedAt = now
	v.UpdatedAt = now

	voteCopy := *v
	r.votes[v.ID] = &voteCopy
	r.pairs[key] = v.ID
	return nil
}

// UpdateType changes the direction of an existing vote in place.
func (r *InMemoryRepository) UpdateType(id string, voteType Type) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.votes[id]
	if !ok {
		return ErrVoteNotFound
	}
	v.VoteType = voteType
	v.UpdatedAt = time.Now()
	return nil
}

// GetByVoterPaper retrieves the single vote for a (voter, paper) pair.
func (r *InMemoryRepository) GetByVoterPaper(voterID, paperID string) (*Vote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.pairs[pairKey(voterID, paperID)]
	if !ok {
		return nil, ErrVoteNotFound
	}
	voteCopy := *r.votes[id]
	return &voteCopy, nil
}

// Delete removes the vote for a (voter, paper) pair and returns it.
func (r *InMemoryRepository) Delete(voterID, paperID string) (*Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(voterID, paperID)
	id, ok := r.pairs[key]
	if !ok {
		return nil, ErrVoteNotFound
	}
	voteCopy := *r.votes[id]
	delete(r.votes, id)
	delete(r.pairs, key)
	return &voteCopy, nil
}

// VoteCounts returns the all-time (upvotes, downvotes) for a paper.
func (r *InMemoryRepository) VoteCounts(paperID string) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var up, down int
	for _, v := range r.votes {
		if v.PaperID != paperID {
			continue
		}
		switch v.VoteType {
		case TypeUpvote:
			up++
		case TypeDownvote:
			down++
		}
	}
	return up, down, nil
}

// VoteCountsInWindow returns (upvotes, downvotes) created within [start, end).
func (r *InMemoryRepository) VoteCountsInWindow(paperID string, start, end time.Time) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var up, down int
	for _, v := range r.votes {
		if v.PaperID != paperID {
			continue
		}
		if v.CreatedAt.Before(start) || !v.CreatedAt.Before(end) {
			continue
		}
		switch v.VoteType {
		case TypeUpvote:
			up++
		case TypeDownvote:
			down++
		}
	}
	return up, down, nil
}
