package vote

import (
	"context"
	"fmt"

	"github.com/openscholar/paperhub/internal/recompute"
)

// PaperChecker verifies that a paper exists and accepts votes. The vote
// service only needs existence, not the full paper repository.
type PaperChecker interface {
	// Exists returns nil when the paper exists and is not removed.
	Exists(paperID string) error
}

// Service applies vote actions for papers. Each durable write notifies the
// activity observer so the recompute pipeline can re-derive scores.
type Service struct {
	repo     Repository
	papers   PaperChecker
	observer recompute.ActivityObserver
}

// NewService creates a vote service. A nil observer disables recompute
// notification.
func NewService(repo Repository, papers PaperChecker, observer recompute.ActivityObserver) *Service {
	if observer == nil {
		observer = recompute.NoopObserver{}
	}
	return &Service{
		repo:     repo,
		papers:   papers,
		observer: observer,
	}
}

// Upvote records an upvote by voterID on paperID.
func (s *Service) Upvote(ctx context.Context, voterID, paperID string) (*Vote, error) {
	return s.cast(ctx, voterID, paperID, TypeUpvote)
}

// Downvote records a downvote by voterID on paperID.
func (s *Service) Downvote(ctx context.Context, voterID, paperID string) (*Vote, error) {
	return s.cast(ctx, voterID, paperID, TypeDownvote)
}

// cast applies a vote of the given type. If the voter already holds a vote
// of the opposite direction the existing row flips in place; a duplicate of
// the same direction returns ErrVoteExists and writes nothing.
func (s *Service) cast(ctx context.Context, voterID, paperID string, voteType Type) (*Vote, error) {
	if err := s.papers.Exists(paperID); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByVoterPaper(voterID, paperID)
	switch {
	case err == nil:
		if existing.VoteType == voteType {
			return nil, ErrVoteExists
		}
		if err := s.repo.UpdateType(existing.ID, voteType); err != nil {
			return nil, fmt.Errorf("flipping vote: %w", err)
		}
		s.observer.PaperActivity(ctx, paperID)
		return s.repo.GetByVoterPaper(voterID, paperID)

	case err == ErrVoteNotFound:
		v := &Vote{
			PaperID:   paperID,
			CreatedBy: voterID,
			VoteType:  voteType,
		}
		if err := s.repo.Create(v); err != nil {
			return nil, fmt.Errorf("creating vote: %w", err)
		}
		s.observer.PaperActivity(ctx, paperID)
		return v, nil

	default:
		return nil, fmt.Errorf("looking up vote: %w", err)
	}
}

// Remove deletes the voter's vote on paperID, returning the removed vote.
// Returns ErrVoteNotFound when no vote exists for the pair.
func (s *Service) Remove(ctx context.Context, voterID, paperID string) (*Vote, error) {
	v, err := s.repo.Delete(voterID, paperID)
	if err != nil {
		return nil, err
	}
	s.observer.PaperActivity(ctx, paperID)
	return v, nil
}

// Get returns the voter's current vote on paperID, or ErrVoteNotFound.
func (s *Service) Get(voterID, paperID string) (*Vote, error) {
	return s.repo.GetByVoterPaper(voterID, paperID)
}
