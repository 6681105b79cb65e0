package moderation

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for moderation data operations.
type Repository interface {
	// CreateFlag inserts a new flag with a generated UUID.
	// Returns ErrFlagExists if the (user, paper) pair already has one.
	CreateFlag(f *Flag) error

	// GetFlag retrieves a flag by ID.
	GetFlag(id string) (*Flag, error)

	// GetFlagByUserPaper retrieves the flag a user placed on a paper.
	GetFlagByUserPaper(userID, paperID string) (*Flag, error)

	// DeleteFlag removes an unresolved flag by ID.
	DeleteFlag(id string) error

	// CreateVerdict inserts a verdict and links it to its flag.
	// Returns ErrFlagResolved if the flag already has a verdict.
	CreateVerdict(v *Verdict) error

	// ListUnresolved returns flags with no verdict, oldest first.
	ListUnresolved() ([]*Flag, error)

	// CountUnresolved returns the number of flags with no verdict.
	CountUnresolved() (int, error)
}

// flagPairKey builds the uniqueness key for a (user, paper) pair.
func flagPairKey(userID, paperID string) string {
	return userID + "\x00" + paperID
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu       sync.RWMutex
	flags    map[string]*Flag    // ID -> Flag
	pairs    map[string]string   // flagPairKey -> flag ID
	verdicts map[string]*Verdict // ID -> Verdict
}

// NewInMemoryRepository creates a new in-memory moderation repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		flags:    make(map[string]*Flag),
		pairs:    make(map[string]string),
		verdicts: make(map[string]*Verdict),
	}
}

// CreateFlag inserts a new flag with a generated UUID.
func (r *InMemoryRepository) CreateFlag(f *Flag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := flagPairKey(f.CreatedBy, f.PaperID)
	if _, exists := r.pairs[key]; exists {
		return ErrFlagExists
	}

	f.ID = uuid.New().String()
	f.CreatedAt = time.Now()

	flagCopy := *f
	r.flags[f.ID] = &flagCopy
	r.pairs[key] = f.ID
	return nil
}

// GetFlag retrieves a flag by ID.
func (r *InMemoryRepository) GetFlag(id string) (*Flag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.flags[id]
	if !ok {
		return nil, ErrFlagNotFound
	}
	flagCopy := *f
	return &flagCopy, nil
}

// GetFlagByUserPaper retrieves the flag a user placed on a paper.
func (r *InMemoryRepository) GetFlagByUserPaper(userID, paperID string) (*Flag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.pairs[flagPairKey(userID, paperID)]
	if !ok {
		return nil, ErrFlagNotFound
	}
	flagCopy := *r.flags[id]
	return &flagCopy, nil
}

// DeleteFlag removes an unresolved flag by ID.
func (r *InMemoryRepository) DeleteFlag(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.flags[id]
	if !ok {
		return ErrFlagNotFound
	}
	if f.Resolved() {
		return ErrFlagResolved
	}

	delete(r.flags, id)
	delete(r.pairs, flagPairKey(f.CreatedBy, f.PaperID))
	return nil
}

// CreateVerdict inserts a verdict and links it to its flag.
func (r *InMemoryRepository) CreateVerdict(v *Verdict) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.flags[v.FlagID]
	if !ok {
		return ErrFlagNotFound
	}
	if f.Resolved() {
		return ErrFlagResolved
	}

	v.ID = uuid.New().String()
	v.CreatedAt = time.Now()

	verdictCopy := *v
	r.verdicts[v.ID] = &verdictCopy
	f.VerdictID = v.ID
	return nil
}

// ListUnresolved returns flags with no verdict, oldest first.
func (r *InMemoryRepository) ListUnresolved() ([]*Flag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Flag
	for _, f := range r.flags {
		if f.Resolved() {
			continue
		}
		flagCopy := *f
		result = append(result, &flagCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Before(result[j].CreatedAt) {
			return true
		}
		if result[i].CreatedAt.After(result[j].CreatedAt) {
			return false
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// CountUnresolved returns the number of flags with no verdict.
func (r *InMemoryRepository) CountUnresolved() (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int
	for _, f := range r.flags {
		if !f.Resolved() {
			count++
		}
	}
	return count, nil
}
