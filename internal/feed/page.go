package feed

import (
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// ErrInvalidPage is returned when a cached page payload cannot be decoded.
var ErrInvalidPage = errors.New("invalid cached page")

// PaperSummary is the feed-facing projection of a paper.
type PaperSummary struct {
	ID              string    `json:"id" cbor:"id"`
	Title           string    `json:"title" cbor:"title"`
	DOI             string    `json:"doi,omitempty" cbor:"doi,omitempty"`
	HubIDs          []string  `json:"hub_ids" cbor:"hub_ids"`
	Score           int       `json:"score" cbor:"score"`
	HotScore        float64   `json:"hot_score" cbor:"hot_score"`
	DiscussionCount int       `json:"discussion_count" cbor:"discussion_count"`
	UploadedAt      time.Time `json:"uploaded_date" cbor:"uploaded_date"`
}

// Page is one page of a ranked feed. NoResults distinguishes "nothing
// matched" from an empty deep page, matching what feed clients key off.
type Page struct {
	Data      []PaperSummary `json:"data" cbor:"data"`
	NoResults bool           `json:"no_results" cbor:"no_results"`
}

// EncodePage serializes a page to CBOR for cache storage.
func EncodePage(p *Page) ([]byte, error) {
	data, err := cbor.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode page: %w", err)
	}
	return data, nil
}

// DecodePage deserializes a CBOR-encoded cached page.
func DecodePage(data []byte) (*Page, error) {
	if len(data) == 0 {
		return nil, ErrInvalidPage
	}
	var p Page
	if err := cbor.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}
	return &p, nil
}
