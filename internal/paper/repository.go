package paper

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for paper data operations.
type Repository interface {
	// Create inserts a new paper with a generated UUID.
	// Returns ErrDuplicateDOI if a paper with the same DOI already exists.
	Create(p *Paper) error

	// Update updates a paper's mutable fields (title, abstract, hubs).
	Update(p *Paper) error

	// GetByID retrieves a paper by ID, excluding removed papers.
	GetByID(id string) (*Paper, error)

	// GetAnyByID retrieves a paper by ID including removed papers.
	// Used by the recompute path, which must stay able to settle scores
	// for papers that were removed after a vote landed.
	GetAnyByID(id string) (*Paper, error)

	// SetRemoved marks a paper removed (or restores it).
	SetRemoved(id string, removed bool) error

	// UpdateScores persists a freshly derived (score, hot score) pair.
	// The write is skipped when both values are unchanged; the return value
	// reports whether anything was written, so callers can suppress
	// redundant cache invalidation.
	UpdateScores(id string, score int, hotScore float64) (bool, error)

	// UpdateDiscussionCount persists the paper's all-time discussion count.
	UpdateDiscussionCount(id string, count int) error

	// ListByHub returns all non-removed papers in a hub.
	ListByHub(hubID string) ([]*Paper, error)

	// ListAll returns all non-removed papers.
	ListAll() ([]*Paper, error)

	// AllIDs returns the IDs of all non-removed papers.
	AllIDs() ([]string, error)

	// HubIDs returns the hub memberships of a paper, including removed
	// papers (cache invalidation still needs the scopes of removed content).
	HubIDs(id string) ([]string, error)
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu     sync.RWMutex
	papers map[string]*Paper // UUID -> Paper
	dois   map[string]string // normalized DOI -> UUID
}

// NewInMemoryRepository creates a new in-memory paper repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		papers: make(map[string]*Paper),
		dois:   make(map[string]string),
	}
}

// normalizeDOI lowercases and trims a DOI for uniqueness checks.
func normalizeDOI(doi string) string {
	return strings.ToLower(strings.TrimSpace(doi))
}

// Create inserts a new paper with a generated UUID.
func (r *InMemoryRepository) Create(p *Paper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.DOI != "" {
		if _, exists := r.dois[normalizeDOI(p.DOI)]; exists {
			return ErrDuplicateDOI
		}
	}

	now := time.Now()
	p.ID = uuid.New().String()
	if p.UploadedAt.IsZero() {
		p.UploadedAt = now
	}
	p.UpdatedAt = now

	paperCopy := *p
	paperCopy.HubIDs = append([]string(nil), p.HubIDs...)
	r.papers[p.ID] = &paperCopy
	if p.DOI != "" {
		r.dois[normalizeDOI(p.DOI)] = p.ID
	}

	return nil
}

// Update updates a paper's mutable fields.
func (r *InMemoryRepository) Update(p *Paper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.papers[p.ID]
	if !ok {
		return ErrPaperNotFound
	}
	if existing.IsRemoved {
		return ErrPaperRemoved
	}

	existing.Title = p.Title
	existing.Abstract = p.Abstract
	existing.HubIDs = append([]string(nil), p.HubIDs...)
	existing.UpdatedAt = time.Now()

	return nil
}

// GetByID retrieves a paper by ID, excluding removed papers.
func (r *InMemoryRepository) GetByID(id string) (*Paper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.papers[id]
	if !ok || p.IsRemoved {
		return nil, ErrPaperNotFound
	}
	return copyPaper(p), nil
}

// GetAnyByID retrieves a paper by ID including removed papers.
func (r *InMemoryRepository) GetAnyByID(id string) (*Paper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.papers[id]
	if !ok {
		return nil, ErrPaperNotFound
	}
	return copyPaper(p), nil
}

// SetRemoved marks a paper removed (or restores it).
func (r *InMemoryRepository) SetRemoved(id string, removed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.papers[id]
	if !ok {
		return ErrPaperNotFound
	}
	p.IsRemoved = removed
	p.UpdatedAt = time.Now()
	return nil
}

// UpdateScores persists a derived (score, hot score) pair, skipping the
// write when nothing changed.
func (r *InMemoryRepository) UpdateScores(id string, score int, hotScore float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.papers[id]
	if !ok {
		return false, ErrPaperNotFound
	}
	if p.Score == score && p.HotScore == hotScore {
		return false, nil
	}
	p.Score = score
	p.HotScore = hotScore
	p.UpdatedAt = time.Now()
	return true, nil
}

// UpdateDiscussionCount persists the all-time discussion count.
func (r *InMemoryRepository) UpdateDiscussionCount(id string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.papers[id]
	if !ok {
		return ErrPaperNotFound
	}
	p.DiscussionCount = count
	return nil
}

// Exists returns nil when the paper exists and is not removed. Returns
// ErrPaperRemoved for removed papers so callers can distinguish the cases.
func (r *InMemoryRepository) Exists(id string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.papers[id]
	if !ok {
		return ErrPaperNotFound
	}
	if p.IsRemoved {
		return ErrPaperRemoved
	}
	return nil
}

// UploadedAt returns a paper's upload timestamp. Satisfies the score
// calculator's store interface.
func (r *InMemoryRepository) UploadedAt(id string) (time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.papers[id]
	if !ok {
		return time.Time{}, ErrPaperNotFound
	}
	return p.UploadedAt, nil
}

// ListByHub returns all non-removed papers in a hub, ordered by upload
// time descending with ID tie-breaking for stable output.
func (r *InMemoryRepository) ListByHub(hubID string) ([]*Paper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Paper
	for _, p := range r.papers {
		if p.IsRemoved || !p.InHub(hubID) {
			continue
		}
		result = append(result, copyPaper(p))
	}
	sortPapersByUploadedDesc(result)
	return result, nil
}

// ListAll returns all non-removed papers.
func (r *InMemoryRepository) ListAll() ([]*Paper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Paper
	for _, p := range r.papers {
		if p.IsRemoved {
			continue
		}
		result = append(result, copyPaper(p))
	}
	sortPapersByUploadedDesc(result)
	return result, nil
}

// AllIDs returns the IDs of all non-removed papers in no particular order.
func (r *InMemoryRepository) AllIDs() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.papers))
	for id, p := range r.papers {
		if p.IsRemoved {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// HubIDs returns the hub memberships of a paper, including removed papers.
func (r *InMemoryRepository) HubIDs(id string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.papers[id]
	if !ok {
		return nil, ErrPaperNotFound
	}
	return append([]string(nil), p.HubIDs...), nil
}

// copyPaper returns a deep copy to prevent external mutation.
func copyPaper(p *Paper) *Paper {
	paperCopy := *p
	paperCopy.HubIDs = append([]string(nil), p.HubIDs...)
	return &paperCopy
}

// sortPapersByUploadedDesc sorts papers by uploaded_at DESC, then by ID ASC
// for tie-breaking, so pagination over the result is stable.
func sortPapersByUploadedDesc(papers []*Paper) {
	sort.Slice(papers, func(i, j int) bool {
		if papers[i].UploadedAt.After(papers[j].UploadedAt) {
			return true
		}
		if papers[i].UploadedAt.Before(papers[j].UploadedAt) {
			return false
		}
		return papers[i].ID < papers[j].ID
	})
}
