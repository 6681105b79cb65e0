package discussion

import (
	"context"
	"errors"
	"strings"

	"github.com/openscholar/paperhub/internal/recompute"
)

// ErrTextRequired is returned for empty thread or comment bodies.
var ErrTextRequired = errors.New("text is required")

// PaperChecker verifies that a paper exists and accepts discussion.
type PaperChecker interface {
	Exists(paperID string) error
}

// Service applies discussion writes. Discussion activity feeds the hot
// score, so every durable write notifies the activity observer.
type Service struct {
	repo     Repository
	papers   PaperChecker
	observer recompute.ActivityObserver
}

// NewService creates a discussion service. A nil observer disables
// recompute notification.
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

// CreateThread starts a discussion thread on a paper.
func (s *Service) CreateThread(ctx context.Context, t *Thread) error {
	if strings.TrimSpace(t.Text) == "" {
		return ErrTextRequired
	}
	if err := s.papers.Exists(t.PaperID); err != nil {
		return err
	}

	if err := s.repo.CreateThread(t); err != nil {
		return err
	}
	s.observer.PaperActivity(ctx, t.PaperID)
	return nil
}

// CreateComment replies within a thread. The comment inherits the thread's
// paper.
func (s *Service) CreateComment(ctx context.Context, c *Comment) error {
	if strings.TrimSpace(c.Text) == "" {
		return ErrTextRequired
	}

	if err := s.repo.CreateComment(c); err != nil {
		return err
	}
	s.observer.PaperActivity(ctx, c.PaperID)
	return nil
}

// Threads returns a paper's threads, newest first.
func (s *Service) Threads(paperID string) ([]*Thread, error) {
	return s.repo.ListThreads(paperID)
}
