// Package figure provides figure metadata records attached to papers.
// Storage of the underlying bytes is external; this package validates and
// tracks the metadata only.
package figure

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Allowed MIME types for figures.
const (
	MIMEImageJPEG = "image/jpeg"
	MIMEImagePNG  = "image/png"
	MIMEImageSVG  = "image/svg+xml"
	MIMEAppPDF    = "application/pdf"
)

// MaxFigureSizeBytes caps a single figure at 25 MB.
const MaxFigureSizeBytes = 25 << 20

// Validation errors.
var (
	ErrFigureNotFound  = errors.New("figure not found")
	ErrInvalidKey      = errors.New("invalid figure key")
	ErrUnsupportedType = errors.New("unsupported content type")
	ErrFileTooLarge    = errors.New("file size exceeds maximum allowed")
)

// AllowedMIMETypes maps allowed MIME types to their file extensions.
var AllowedMIMETypes = map[string]string{
	MIMEImageJPEG: ".jpg",
	MIMEImagePNG:  ".png",
	MIMEImageSVG:  ".svg",
	MIMEAppPDF:    ".pdf",
}

// Figure is the metadata record for one figure of a paper.
type Figure struct {
	ID        string    `json:"id"`
	PaperID   string    `json:"paper_id"`
	Key       string    `json:"key"` // Object key in external storage
	Type      string    `json:"type"`
	SizeBytes int64     `json:"size_bytes"`
	Width     *int      `json:"width,omitempty"`
	Height    *int      `json:"height,omitempty"`
	CreatedAt time.Time `json:"created_date"`
}

// Validate checks the figure's metadata before it is stored.
func (f *Figure) Validate() error {
	if f.Key == "" {
		return ErrInvalidKey
	}
	if _, ok := AllowedMIMETypes[f.Type]; !ok {
		return ErrUnsupportedType
	}
	if f.SizeBytes <= 0 || f.SizeBytes > MaxFigureSizeBytes {
		return ErrFileTooLarge
	}
	return nil
}

// Repository defines the interface for figure metadata operations.
type Repository interface {
	// Create validates and inserts a figure with a generated UUID.
	Create(f *Figure) error

	// GetByID retrieves a figure by ID.
	GetByID(id string) (*Figure, error)

	// ListByPaper returns a paper's figures, oldest first.
	ListByPaper(paperID string) ([]*Figure, error)

	// Delete removes a figure by ID.
	Delete(id string) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// Thread-safe via RWMutex.
type InMemoryRepository struct {
	mu      sync.RWMutex
	figures map[string]*Figure // ID -> Figure
}

// NewInMemoryRepository creates a new in-memory figure repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		figures: make(map[string]*Figure),
	}
}

// Create validates and inserts a figure with a generated UUID.
func (r *InMemoryRepository) Create(f *Figure) error {
	if err := f.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f.ID = uuid.New().String()
	f.CreatedAt = time.Now()

	figureCopy := copyFigure(f)
	r.figures[f.ID] = figureCopy
	return nil
}

// GetByID retrieves a figure by ID.
func (r *InMemoryRepository) GetByID(id string) (*Figure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.figures[id]
	if !ok {
		return nil, ErrFigureNotFound
	}
	return copyFigure(f), nil
}

// ListByPaper returns a paper's figures, oldest first.
func (r *InMemoryRepository) ListByPaper(paperID string) ([]*Figure, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Figure
	for _, f := range r.figures {
		if f.PaperID != paperID {
			continue
		}
		result = append(result, copyFigure(f))
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

// Delete removes a figure by ID.
func (r *InMemoryRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.figures[id]; !ok {
		return ErrFigureNotFound
	}
	delete(r.figures, id)
	return nil
}

// copyFigure returns a deep copy to prevent external mutation.
func copyFigure(f *Figure) *Figure {
	figureCopy := *f
	if f.Width != nil {
		w := *f.Width
		figureCopy.Width = &w
	}
	if f.Height != nil {
		h := *f.Height
		figureCopy.Height = &h
	}
	return &figureCopy
}
