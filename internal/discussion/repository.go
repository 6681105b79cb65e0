package discussion

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for discussion data operations.
type Repository interface {
	// CreateThread inserts a new thread with a generated UUID.
	CreateThread(t *Thread) error

	// CreateComment inserts a new comment with a generated UUID.
	// Returns ErrThreadNotFound if the thread does not exist.
	CreateComment(c *Comment) error

	// DiscussionCounts returns the all-time (threads, comments) counts for
	// a paper, excluding removed items.
	DiscussionCounts(paperID string) (threads, comments int, err error)

	// DiscussionCountsInWindow returns threads + comments created within
	// [start, end) for a paper, excluding removed items.
	DiscussionCountsInWindow(paperID string, start, end time.Time) (int, error)

	// ListThreads returns the threads of a paper, newest first.
	ListThreads(paperID string) ([]*Thread, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu       sync.RWMutex
	threads  map[string]*Thread  // ID -> Thread
	comments map[string]*Comment // ID -> Comment
}

// NewInMemoryRepository creates a new in-memory discussion repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		threads:  make(map[string]*Thread),
		comments: make(map[string]*Comment),
	}
}

// CreateThread inserts a new thread with a generated UUID.
func (r *InMemoryRepository) CreateThread(t *Thread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = uuid.New().String()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	threadCopy := *t
	r.threads[t.ID] = &threadCopy
	return nil
}

// CreateComment inserts a new comment with a generated UUID.
func (r *InMemoryRepository) CreateComment(c *Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	thread, ok := r.threads[c.ThreadID]
	if !ok {
		return ErrThreadNotFound
	}

	c.ID = uuid.New().String()
	c.PaperID = thread.PaperID
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}

	commentCopy := *c
	r.comments[c.ID] = &commentCopy
	return nil
}

// DiscussionCounts returns the all-time (threads, comments) counts for a paper.
func (r *InMemoryRepository) DiscussionCounts(paperID string) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var threads, comments int
	for _, t := range r.threads {
		if t.PaperID == paperID && !t.IsRemoved {
			threads++
		}
	}
	for _, c := range r.comments {
		if c.PaperID == paperID && !c.IsRemoved {
			comments++
		}
	}
	return threads, comments, nil
}

// DiscussionCountsInWindow returns threads + comments created within
// [start, end) for a paper.
func (r *InMemoryRepository) DiscussionCountsInWindow(paperID string, start, end time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int
	for _, t := range r.threads {
		if t.PaperID == paperID && !t.IsRemoved && inWindow(t.CreatedAt, start, end) {
			count++
		}
	}
	for _, c := range r.comments {
		if c.PaperID == paperID && !c.IsRemoved && inWindow(c.CreatedAt, start, end) {
			count++
		}
	}
	return count, nil
}

// ListThreads returns the threads of a paper, newest first.
func (r *InMemoryRepository) ListThreads(paperID string) ([]*Thread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Thread
	for _, t := range r.threads {
		if t.PaperID != paperID || t.IsRemoved {
			continue
		}
		threadCopy := *t
		result = append(result, &threadCopy)
	}
	sortThreadsByCreatedDesc(result)
	return result, nil
}

// inWindow reports whether ts falls within [start, end).
func inWindow(ts time.Time, start, end time.Time) bool {
	return !ts.Before(start) && ts.Before(end)
}

// sortThreadsByCreatedDesc sorts threads by created_at DESC, then by ID ASC
// for tie-breaking.
func sortThreadsByCreatedDesc(threads []*Thread) {
	sort.Slice(threads, func(i, j int) bool {
		if threads[i].CreatedAt.After(threads[j].CreatedAt) {
			return true
		}
		if threads[i].CreatedAt.Before(threads[j].CreatedAt) {
			return false
		}
		return threads[i].ID < threads[j].ID
	})
}
