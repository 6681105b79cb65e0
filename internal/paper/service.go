package paper

import (
	"context"
	"errors"
	"strings"

	"github.com/openscholar/paperhub/internal/recompute"
)

// Validation errors for paper submissions.
var (
	ErrTitleRequired    = errors.New("title is required")
	ErrUploaderRequired = errors.New("uploader is required")
)

// HubChecker verifies that hub IDs attached to a paper exist.
type HubChecker interface {
	Exists(hubID string) error
}

// Invalidator drops cached feed pages for a set of hubs. The paper service
// calls it directly on hub membership changes, where the recompute path
// alone would miss feeds the paper just left.
type Invalidator interface {
	InvalidateHubs(ctx context.Context, hubIDs []string) error
}

// Service applies paper operations. Writes that change what a feed shows
// notify the activity observer so cached pages refresh.
type Service struct {
	repo        Repository
	hubs        HubChecker
	observer    recompute.ActivityObserver
	invalidator Invalidator
}

// NewService creates a paper service. A nil hubs skips hub validation, a
// nil observer disables recompute notification, a nil invalidator skips
// departure invalidation.
func NewService(repo Repository, hubs HubChecker, observer recompute.ActivityObserver, invalidator Invalidator) *Service {
	if observer == nil {
		observer = recompute.NoopObserver{}
	}
	return &Service{
		repo:        repo,
		hubs:        hubs,
		observer:    observer,
		invalidator: invalidator,
	}
}

// Create validates and stores a new paper.
func (s *Service) Create(ctx context.Context, p *Paper) error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if p.UploadedBy == "" {
		return ErrUploaderRequired
	}
	if err := s.checkHubs(p.HubIDs); err != nil {
		return err
	}

	if err := s.repo.Create(p); err != nil {
		return err
	}
	s.observer.PaperActivity(ctx, p.ID)

	// A new paper has no votes, so the recompute path sees no score change
	// and skips invalidation. Arrival-ordered pages must refresh anyway.
	s.invalidate(ctx, p.HubIDs)
	return nil
}

// Get retrieves a paper by ID. Removed papers read as not found.
func (s *Service) Get(id string) (*Paper, error) {
	return s.repo.GetByID(id)
}

// Update applies changes to a paper's title, abstract, and hubs. Hub
// changes move the paper between feeds, so the observer fires.
func (s *Service) Update(ctx context.Context, p *Paper) error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if err := s.checkHubs(p.HubIDs); err != nil {
		return err
	}

	// Capture the previous hub set before the write. The recompute path
	// resolves hubs after the update, so feeds the paper is leaving would
	// otherwise keep their cached page until the TTL expires.
	previousHubs, err := s.repo.HubIDs(p.ID)
	if err != nil {
		return err
	}

	if err := s.repo.Update(p); err != nil {
		return err
	}
	s.observer.PaperActivity(ctx, p.ID)

	// Both the hubs the paper left and the ones it now belongs to hold
	// stale pages after an edit.
	s.invalidate(ctx, unionHubs(previousHubs, p.HubIDs))
	return nil
}

// invalidate drops cached pages for hubIDs. Best effort; failures are
// swallowed and stale pages age out via TTL.
func (s *Service) invalidate(ctx context.Context, hubIDs []string) {
	if s.invalidator == nil {
		return
	}
	_ = s.invalidator.InvalidateHubs(ctx, hubIDs)
}

// unionHubs merges two hub ID sets preserving first-seen order.
func unionHubs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, id := range append(append([]string{}, a...), b...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ListByHub returns the papers of a hub, newest first.
func (s *Service) ListByHub(hubID string) ([]*Paper, error) {
	return s.repo.ListByHub(hubID)
}

// checkHubs validates every referenced hub when a checker is configured.
func (s *Service) checkHubs(hubIDs []string) error {
	if s.hubs == nil {
		return nil
	}
	for _, id := range hubIDs {
		if err := s.hubs.Exists(id); err != nil {
			return err
		}
	}
	return nil
}
