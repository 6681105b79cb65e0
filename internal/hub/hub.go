// Package hub provides the topic-hub model and repository. Hubs group papers
// and act as the scope dimension for feed filtering and cache invalidation.
package hub

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Common errors for hub operations.
var (
	ErrHubNotFound  = errors.New("hub not found")
	ErrDuplicateHub = errors.New("a hub with this slug already exists")
)

// Hub is a topic grouping of papers.
type Hub struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository defines the interface for hub data operations.
type Repository interface {
	Create(h *Hub) error
	GetByID(id string) (*Hub, error)
	List() ([]*Hub, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu    sync.RWMutex
	hubs  map[string]*Hub   // ID -> Hub
	slugs map[string]string // slug -> ID
}

// NewInMemoryRepository creates a new in-memory hub repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		hubs:  make(map[string]*Hub),
		slugs: make(map[string]string),
	}
}

// Create inserts a new hub with a generated UUID. Slugs are unique.
func (r *InMemoryRepository) Create(h *Hub) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h.Slug == "" {
		h.Slug = slugify(h.Name)
	}
	if _, exists := r.slugs[h.Slug]; exists {
		return ErrDuplicateHub
	}

	h.ID = uuid.New().String()
	h.CreatedAt = time.Now()

	hubCopy := *h
	r.hubs[h.ID] = &hubCopy
	r.slugs[h.Slug] = h.ID
	return nil
}

// GetByID retrieves a hub by its ID.
func (r *InMemoryRepository) GetByID(id string) (*Hub, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.hubs[id]
	if !ok {
		return nil, ErrHubNotFound
	}
	hubCopy := *h
	return &hubCopy, nil
}

// Exists returns nil when the hub exists.
func (r *InMemoryRepository) Exists(id string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.hubs[id]; !ok {
		return ErrHubNotFound
	}
	return nil
}

// List returns all hubs ordered by name.
func (r *InMemoryRepository) List() ([]*Hub, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Hub, 0, len(r.hubs))
	for _, h := range r.hubs {
		hubCopy := *h
		result = append(result, &hubCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// slugify converts a hub name to a URL-safe slug.
func slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	return s
}
