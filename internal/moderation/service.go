package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/openscholar/paperhub/internal/recompute"
)

// PaperRemover is the slice of the paper repository moderation writes to.
type PaperRemover interface {
	// Exists returns nil when the paper exists and is not removed.
	Exists(paperID string) error
	// SetRemoved marks a paper removed (or restores it).
	SetRemoved(paperID string, removed bool) error
	// HubIDs resolves hub memberships, including removed papers.
	HubIDs(paperID string) ([]string, error)
}

// Invalidator drops cached feed pages for a set of hubs. Removal and
// restore change feed membership without changing scores, so the recompute
// path's changed-only invalidation cannot cover them; the service
// invalidates directly.
type Invalidator interface {
	InvalidateHubs(ctx context.Context, hubIDs []string) error
}

// Service applies flagging and verdict operations. Removing verdicts notify
// the activity observer so the removed paper drops out of cached feeds.
type Service struct {
	repo        Repository
	papers      PaperRemover
	observer    recompute.ActivityObserver
	invalidator Invalidator
}

// NewService creates a moderation service. A nil observer disables
// recompute notification, a nil invalidator skips membership invalidation.
func NewService(repo Repository, papers PaperRemover, observer recompute.ActivityObserver, invalidator Invalidator) *Service {
	if observer == nil {
		observer = recompute.NoopObserver{}
	}
	return &Service{
		repo:        repo,
		papers:      papers,
		observer:    observer,
		invalidator: invalidator,
	}
}

// FlagPaper records a flag by userID against paperID. A user can hold at
// most one flag per paper; a second attempt returns ErrFlagExists.
func (s *Service) FlagPaper(userID, paperID, reason string) (*Flag, error) {
	if !ValidReason(reason) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReason, reason)
	}
	if err := s.papers.Exists(paperID); err != nil {
		return nil, err
	}

	f := &Flag{
		PaperID:   paperID,
		CreatedBy: userID,
		Reason:    reason,
	}
	if err := s.repo.CreateFlag(f); err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFlag removes the flag userID placed on paperID. Missing flags are
// an error the handler maps to a client failure, not a server one.
func (s *Service) DeleteFlag(userID, paperID string) error {
	f, err := s.repo.GetFlagByUserPaper(userID, paperID)
	if err != nil {
		return err
	}
	return s.repo.DeleteFlag(f.ID)
}

// RemoveFlaggedContent resolves a flag by removing the paper. The verdict
// records the flag's reason as its choice, the paper's removed bit is set,
// and the observer fires so stale feed pages drop the paper.
func (s *Service) RemoveFlaggedContent(ctx context.Context, moderatorID, flagID string) (*Verdict, error) {
	f, err := s.repo.GetFlag(flagID)
	if err != nil {
		return nil, err
	}
	if f.Resolved() {
		return nil, ErrFlagResolved
	}

	v := &Verdict{
		FlagID:           flagID,
		CreatedBy:        moderatorID,
		Choice:           f.Reason,
		IsContentRemoved: true,
	}
	if err := s.repo.CreateVerdict(v); err != nil {
		return nil, err
	}

	if err := s.papers.SetRemoved(f.PaperID, true); err != nil {
		return nil, fmt.Errorf("removing paper %s: %w", f.PaperID, err)
	}
	s.observer.PaperActivity(ctx, f.PaperID)
	s.invalidate(ctx, f.PaperID)

	return v, nil
}

// DismissFlaggedContent resolves a flag without touching the content. The
// verdict choice is the flag's reason prefixed with NOT_, recording what
// the moderator rejected.
func (s *Service) DismissFlaggedContent(moderatorID, flagID string) (*Verdict, error) {
	f, err := s.repo.GetFlag(flagID)
	if err != nil {
		return nil, err
	}
	if f.Resolved() {
		return nil, ErrFlagResolved
	}

	v := &Verdict{
		FlagID:    flagID,
		CreatedBy: moderatorID,
		Choice:    "NOT_" + f.Reason,
	}
	if err := s.repo.CreateVerdict(v); err != nil {
		return nil, err
	}
	return v, nil
}

// RestorePaper clears a paper's removed bit and notifies the observer so
// its feeds repopulate.
func (s *Service) RestorePaper(ctx context.Context, paperID string) error {
	if err := s.papers.SetRemoved(paperID, false); err != nil {
		return err
	}
	s.observer.PaperActivity(ctx, paperID)
	s.invalidate(ctx, paperID)
	return nil
}

// invalidate drops cached feed pages for paperID's hubs. Removal and
// restore leave scores untouched, so only this path clears the stale
// membership. Best effort; failures age out via TTL.
func (s *Service) invalidate(ctx context.Context, paperID string) {
	if s.invalidator == nil {
		return
	}
	hubIDs, err := s.papers.HubIDs(paperID)
	if err != nil {
		return
	}
	_ = s.invalidator.InvalidateHubs(ctx, hubIDs)
}

// UnresolvedCount returns the number of flags awaiting a verdict.
func (s *Service) UnresolvedCount() (int, error) {
	return s.repo.CountUnresolved()
}

// Unresolved returns the flags awaiting a verdict, oldest first.
func (s *Service) Unresolved() ([]*Flag, error) {
	return s.repo.ListUnresolved()
}

// IsNotFound reports whether err is one of the moderation not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFlagNotFound)
}
