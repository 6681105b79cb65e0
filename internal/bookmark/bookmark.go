// Package bookmark lets users save papers for later. Adding is idempotent;
// bookmarks never affect ranking.
package bookmark

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrBookmarkNotFound is returned when removing a bookmark that does not exist.
var ErrBookmarkNotFound = errors.New("bookmark not found")

// Bookmark is one user's saved paper.
type Bookmark struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PaperID   string    `json:"paper_id"`
	CreatedAt time.Time `json:"created_date"`
}

// Repository defines the interface for bookmark data operations.
type Repository interface {
	// Add saves a paper for a user. Adding an existing bookmark returns
	// the existing record unchanged.
	Add(userID, paperID string) (*Bookmark, error)

	// Remove deletes a user's bookmark on a paper.
	Remove(userID, paperID string) error

	// ListByUser returns a user's bookmarks, newest first.
	ListByUser(userID string) ([]*Bookmark, error)
}

// pairKey builds the uniqueness key for a (user, paper) pair.
func pairKey(userID, paperID string) string {
	return userID + "\x00" + paperID
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu    sync.RWMutex
	pairs map[string]*Bookmark // pairKey -> Bookmark
}

// NewInMemoryRepository creates a new in-memory bookmark repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		pairs: make(map[string]*Bookmark),
	}
}

// Add saves a paper for a user, idempotently.
func (r *InMemoryRepository) Add(userID, paperID string) (*Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(userID, paperID)
	if existing, ok := r.pairs[key]; ok {
		bookmarkCopy := *existing
		return &bookmarkCopy, nil
	}

	b := &Bookmark{
		ID:        uuid.New().String(),
		UserID:    userID,
		PaperID:   paperID,
		CreatedAt: time.Now(),
	}
	r.pairs[key] = b

	bookmarkCopy := *b
	return &bookmarkCopy, nil
}

// Remove deletes a user's bookmark on a paper.
func (r *InMemoryRepository) Remove(userID, paperID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey(userID, paperID)
	if _, ok := r.pairs[key]; !ok {
		return ErrBookmarkNotFound
	}
	delete(r.pairs, key)
	return nil
}

// ListByUser returns a user's bookmarks, newest first.
func (r *InMemoryRepository) ListByUser(userID string) ([]*Bookmark, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Bookmark
	for _, b := range r.pairs {
		if b.UserID != userID {
			continue
		}
		bookmarkCopy := *b
		result = append(result, &bookmarkCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.After(result[j].CreatedAt) {
			return true
		}
		if result[i].CreatedAt.Before(result[j].CreatedAt) {
			return false
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}
