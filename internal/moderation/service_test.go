package moderation

import (
	"context"
	"errors"
	"testing"
)

type fakePapers struct {
	removed   map[string]bool
	hubs      map[string][]string
	existsErr error
	hubsErr   error
}

func newFakePapers() *fakePapers {
	return &fakePapers{
		removed: make(map[string]bool),
		hubs:    make(map[string][]string),
	}
}

func (f *fakePapers) Exists(paperID string) error {
	return f.existsErr
}

func (f *fakePapers) SetRemoved(paperID string, removed bool) error {
	f.removed[paperID] = removed
	return nil
}

func (f *fakePapers) HubIDs(paperID string) ([]string, error) {
	if f.hubsErr != nil {
		return nil, f.hubsErr
	}
	return f.hubs[paperID], nil
}

type recordingObserver struct {
	paperIDs []string
}

func (o *recordingObserver) PaperActivity(ctx context.Context, paperID string) {
	o.paperIDs = append(o.paperIDs, paperID)
}

type recordingInvalidator struct {
	calls [][]string
	err   error
}

func (r *recordingInvalidator) InvalidateHubs(ctx context.Context, hubIDs []string) error {
	r.calls = append(r.calls, append([]string(nil), hubIDs...))
	return r.err
}

func TestService_FlagPaper(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), newFakePapers(), nil, nil)

	f, err := svc.FlagPaper("user-1", "paper-1", ReasonSpam)
	if err != nil {
		t.Fatalf("FlagPaper failed: %v", err)
	}
	if f.ID == "" {
		t.Error("flag should get an ID")
	}
	if f.Reason != ReasonSpam {
		t.Errorf("Reason = %q, want %q", f.Reason, ReasonSpam)
	}
	if f.Resolved() {
		t.Error("new flag should be unresolved")
	}
}

func TestService_FlagPaper_OnePerPair(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), newFakePapers(), nil, nil)

	if _, err := svc.FlagPaper("user-1", "paper-1", ReasonSpam); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.FlagPaper("user-1", "paper-1", ReasonCopyright); !errors.Is(err, ErrFlagExists) {
		t.Errorf("second flag on same pair = %v, want ErrFlagExists", err)
	}

	// Other users can still flag the same paper.
	if _, err := svc.FlagPaper("user-2", "paper-1", ReasonSpam); err != nil {
		t.Errorf("second user's flag failed: %v", err)
	}
}

func TestService_FlagPaper_InvalidReason(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), newFakePapers(), nil, nil)

	for _, reason := range []string{"", "spam", "OFFENSIVE"} {
		if _, err := svc.FlagPaper("user-1", "paper-1", reason); !errors.Is(err, ErrInvalidReason) {
			t.Errorf("FlagPaper(%q) = %v, want ErrInvalidReason", reason, err)
		}
	}
}

func TestService_FlagPaper_UnknownPaper(t *testing.T) {
	papers := newFakePapers()
	papers.existsErr = errors.New("paper not found")
	svc := NewService(NewInMemoryRepository(), papers, nil, nil)

	if _, err := svc.FlagPaper("user-1", "ghost", ReasonSpam); !errors.Is(err, papers.existsErr) {
		t.Errorf("FlagPaper on missing paper = %v, want the checker error", err)
	}
}

func TestService_DeleteFlag(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, newFakePapers(), nil, nil)

	if _, err := svc.FlagPaper("user-1", "paper-1", ReasonSpam); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteFlag("user-1", "paper-1"); err != nil {
		t.Fatalf("DeleteFlag failed: %v", err)
	}

	// The pair is free again.
	if _, err := svc.FlagPaper("user-1", "paper-1", ReasonLowQuality); err != nil {
		t.Errorf("re-flagging after delete failed: %v", err)
	}

	if err := svc.DeleteFlag("user-2", "paper-1"); !errors.Is(err, ErrFlagNotFound) {
		t.Errorf("DeleteFlag with no flag = %v, want ErrFlagNotFound", err)
	}
}

func TestService_DeleteFlag_ResolvedIsImmutable(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, newFakePapers(), nil, nil)

	f, err := svc.FlagPaper("user-1", "paper-1", ReasonSpam)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.DismissFlaggedContent("mod-1", f.ID); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteFlag("user-1", "paper-1"); !errors.Is(err, ErrFlagResolved) {
		t.Errorf("deleting a resolved flag = %v, want ErrFlagResolved", err)
	}
}

func TestService_RemoveFlaggedContent(t *testing.T) {
	repo := NewInMemoryRepository()
	papers := newFakePapers()
	observer := &recordingObserver{}
	svc := NewService(repo, papers, observer, nil)
	ctx := context.Background()

	f, err := svc.FlagPaper("user-1", "paper-1", ReasonCopyright)
	if err != nil {
		t.Fatal(err)
	}

	v, err := svc.RemoveFlaggedContent(ctx, "mod-1", f.ID)
	if err != nil {
		t.Fatalf("RemoveFlaggedContent failed: %v", err)
	}

	// The verdict records the flag's reason as its choice.
	if v.Choice != ReasonCopyright {
		t.Errorf("Choice = %q, want %q", v.Choice, ReasonCopyright)
	}
	if !v.IsContentRemoved {
		t.Error("removing verdict should set IsContentRemoved")
	}
	if v.CreatedBy != "mod-1" {
		t.Errorf("CreatedBy = %q, want mod-1", v.CreatedBy)
	}

	// The paper's removed bit is set and the observer fired.
	if !papers.removed["paper-1"] {
		t.Error("paper should be marked removed")
	}
	if len(observer.paperIDs) != 1 || observer.paperIDs[0] != "paper-1" {
		t.Errorf("observer notified with %v, want [paper-1]", observer.paperIDs)
	}

	// The flag is now resolved.
	stored, err := repo.GetFlag(f.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Resolved() {
		t.Error("flag should be resolved after the verdict")
	}
}

func TestService_RemoveFlaggedContent_InvalidatesHubs(t *testing.T) {
	papers := newFakePapers()
	papers.hubs["paper-1"] = []string{"hub-a", "hub-b"}
	invalidator := &recordingInvalidator{}
	svc := NewService(NewInMemoryRepository(), papers, nil, invalidator)
	ctx := context.Background()

	f, err := svc.FlagPaper("user-1", "paper-1", ReasonSpam)
	if err != nil {
		t.Fatal(err)
	}

	// Removal changes feed membership without changing any score, so the
	// service must drop the cached pages itself rather than rely on a
	// recompute detecting a change.
	if _, err := svc.RemoveFlaggedContent(ctx, "mod-1", f.ID); err != nil {
		t.Fatalf("RemoveFlaggedContent failed: %v", err)
	}
	if len(invalidator.calls) != 1 {
		t.Fatalf("invalidator called %d times, want 1", len(invalidator.calls))
	}
	if got := invalidator.calls[0]; len(got) != 2 || got[0] != "hub-a" || got[1] != "hub-b" {
		t.Errorf("invalidated hubs = %v, want [hub-a hub-b]", got)
	}
}

func TestService_RemoveFlaggedContent_InvalidationFailureSwallowed(t *testing.T) {
	papers := newFakePapers()
	papers.hubs["paper-1"] = []string{"hub-a"}
	invalidator := &recordingInvalidator{err: errors.New("redis down")}
	svc := NewService(NewInMemoryRepository(), papers, nil, invalidator)
	ctx := context.Background()

	f, err := svc.FlagPaper("user-1", "paper-1", ReasonSpam)
	if err != nil {
		t.Fatal(err)
	}

	// Stale pages age out via TTL; cache trouble must not fail moderation.
	if _, err := svc.RemoveFlaggedContent(ctx, "mod-1", f.ID); err != nil {
		t.Errorf("RemoveFlaggedContent = %v, want nil despite invalidation failure", err)
	}
	if !papers.removed["paper-1"] {
		t.Error("paper should still be marked removed")
	}
}

func TestService_DismissFlaggedContent(t *testing.T) {
	repo := NewInMemoryRepository()
	papers := newFakePapers()
	observer := &recordingObserver{}
	svc := NewService(repo, papers, observer, nil)

	f, err := svc.FlagPaper("user-1", "paper-1", ReasonSpam)
	if err != nil {
		t.Fatal(err)
	}

	v, err := svc.DismissFlaggedContent("mod-1", f.ID)
	if err != nil {
		t.Fatalf("DismissFlaggedContent failed: %v", err)
	}

	// The choice records what the moderator rejected.
	if v.Choice != "NOT_SPAM" {
		t.Errorf("Choice = %q, want NOT_SPAM", v.Choice)
	}
	if v.IsContentRemoved {
		t.Error("dismissing verdict should not remove content")
	}

	// Content stays up and no recompute fires.
	if papers.removed["paper-1"] {
		t.Error("dismissal must not remove the paper")
	}
	if len(observer.paperIDs) != 0 {
		t.Errorf("observer notified with %v, want none", observer.paperIDs)
	}
}

func TestService_VerdictOnResolvedFlag(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, newFakePapers(), nil, nil)
	ctx := context.Background()

	f, err := svc.FlagPaper("user-1", "paper-1", ReasonSpam)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.DismissFlaggedContent("mod-1", f.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.RemoveFlaggedContent(ctx, "mod-2", f.ID); !errors.Is(err, ErrFlagResolved) {
		t.Errorf("second verdict = %v, want ErrFlagResolved", err)
	}
	if _, err := svc.DismissFlaggedContent("mod-2", f.ID); !errors.Is(err, ErrFlagResolved) {
		t.Errorf("second dismissal = %v, want ErrFlagResolved", err)
	}
}

func TestService_VerdictOnMissingFlag(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), newFakePapers(), nil, nil)
	ctx := context.Background()

	if _, err := svc.RemoveFlaggedContent(ctx, "mod-1", "ghost"); !IsNotFound(err) {
		t.Errorf("RemoveFlaggedContent(ghost) = %v, want not-found", err)
	}
	if _, err := svc.DismissFlaggedContent("mod-1", "ghost"); !IsNotFound(err) {
		t.Errorf("DismissFlaggedContent(ghost) = %v, want not-found", err)
	}
}

func TestService_RestorePaper(t *testing.T) {
	papers := newFakePapers()
	observer := &recordingObserver{}
	svc := NewService(NewInMemoryRepository(), papers, observer, nil)
	ctx := context.Background()

	papers.removed["paper-1"] = true
	if err := svc.RestorePaper(ctx, "paper-1"); err != nil {
		t.Fatalf("RestorePaper failed: %v", err)
	}
	if papers.removed["paper-1"] {
		t.Error("paper should be restored")
	}
	if len(observer.paperIDs) != 1 {
		t.Errorf("observer notified %d times, want 1", len(observer.paperIDs))
	}
}

func TestService_RestorePaper_InvalidatesHubs(t *testing.T) {
	papers := newFakePapers()
	papers.hubs["paper-1"] = []string{"hub-a"}
	invalidator := &recordingInvalidator{}
	svc := NewService(NewInMemoryRepository(), papers, nil, invalidator)
	ctx := context.Background()

	papers.removed["paper-1"] = true
	if err := svc.RestorePaper(ctx, "paper-1"); err != nil {
		t.Fatalf("RestorePaper failed: %v", err)
	}
	if len(invalidator.calls) != 1 {
		t.Fatalf("invalidator called %d times, want 1", len(invalidator.calls))
	}
	if got := invalidator.calls[0]; len(got) != 1 || got[0] != "hub-a" {
		t.Errorf("invalidated hubs = %v, want [hub-a]", got)
	}
}

func TestService_UnresolvedQueue(t *testing.T) {
	repo := NewInMemoryRepository()
	svc := NewService(repo, newFakePapers(), nil, nil)

	f1, err := svc.FlagPaper("user-1", "paper-1", ReasonSpam)
	if err != nil {
		t.Fatal(err)
	}
	f2, err := svc.FlagPaper("user-2", "paper-2", ReasonLowQuality)
	if err != nil {
		t.Fatal(err)
	}

	count, err := svc.UnresolvedCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("UnresolvedCount = %d, want 2", count)
	}

	// Resolving one drops it from the queue.
	if _, err := svc.DismissFlaggedContent("mod-1", f1.ID); err != nil {
		t.Fatal(err)
	}

	flags, err := svc.Unresolved()
	if err != nil {
		t.Fatal(err)
	}
	if len(flags) != 1 || flags[0].ID != f2.ID {
		t.Errorf("Unresolved = %d flags, want only the second", len(flags))
	}

	count, _ = svc.UnresolvedCount()
	if count != 1 {
		t.Errorf("UnresolvedCount = %d, want 1", count)
	}
}

func TestValidReason(t *testing.T) {
	for _, reason := range []string{ReasonSpam, ReasonCopyright, ReasonLowQuality, ReasonNotSpecified} {
		if !ValidReason(reason) {
			t.Errorf("ValidReason(%q) = false, want true", reason)
		}
	}
	for _, reason := range []string{"", "spam", "NOT_SPAM", "OTHER"} {
		if ValidReason(reason) {
			t.Errorf("ValidReason(%q) = true, want false", reason)
		}
	}
}
