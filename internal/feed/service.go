package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/openscholar/paperhub/internal/cache"
	"github.com/openscholar/paperhub/internal/paper"
)

// DefaultCacheTTL bounds staleness when an invalidation is missed.
const DefaultCacheTTL = 7 * 24 * time.Hour

// DefaultPageSize is the number of papers per feed page.
const DefaultPageSize = 20

// Outcome describes how a feed request was served relative to the cache.
type Outcome string

// Feed request outcomes.
const (
	OutcomeHit      Outcome = "hit"      // Served from cache
	OutcomeMiss     Outcome = "miss"     // Queried and cached
	OutcomeDegraded Outcome = "degraded" // Cache failed, served from a direct query
	OutcomeBypass   Outcome = "bypass"   // Not cacheable (deep page or no cache configured)
)

// Request identifies one feed page.
type Request struct {
	HubID    string   // Empty or "0" means the global feed
	Ordering Ordering // Already parsed; unknown falls back, never errors
	Window   Window
	Page     int // 1-based; values below 1 are treated as 1
}

// Service serves ranked feed pages with first-page caching. The cache is an
// accelerator only: any cache failure degrades to a direct query and the
// request still succeeds.
type Service struct {
	builder  *Builder
	store    cache.Store // Nil disables caching entirely
	ttl      time.Duration
	pageSize int
	logger   *slog.Logger
	metrics  *Metrics
}

// NewService creates a feed service. A nil store disables caching, a nil
// metrics disables instrumentation.
func NewService(builder *Builder, store cache.Store, logger *slog.Logger, metrics *Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		builder:  builder,
		store:    store,
		ttl:      DefaultCacheTTL,
		pageSize: DefaultPageSize,
		logger:   logger,
		metrics:  metrics,
	}
}

// SetCacheTTL overrides the cache entry TTL.
func (s *Service) SetCacheTTL(ttl time.Duration) {
	if ttl > 0 {
		s.ttl = ttl
	}
}

// SetPageSize overrides the feed page size.
func (s *Service) SetPageSize(size int) {
	if size > 0 {
		s.pageSize = size
	}
}

// GetFeed serves one feed page. Only the first page is cache-eligible;
// deeper pages always run the query builder.
func (s *Service) GetFeed(ctx context.Context, req Request) (*Page, Outcome, error) {
	if req.Page < 1 {
		req.Page = 1
	}

	if req.Page > 1 || s.store == nil {
		page, err := s.query(req)
		if err != nil {
			return nil, OutcomeBypass, err
		}
		s.countRequest(OutcomeBypass)
		return page, OutcomeBypass, nil
	}

	key := CacheKey(ScopeForHub(req.HubID), req.Ordering, ClassifyBucket(req.Window))

	cached, found, err := s.store.Get(ctx, key)
	if err != nil {
		// Cache down. Serve from the source and try to repopulate; the
		// write failing too is fine.
		s.logger.Warn("feed cache read failed, serving direct query",
			"key", key,
			"error", err)
		s.countCacheError("get")
		page, qerr := s.query(req)
		if qerr != nil {
			return nil, OutcomeDegraded, qerr
		}
		s.populate(ctx, key, page)
		s.countRequest(OutcomeDegraded)
		return page, OutcomeDegraded, nil
	}

	if found {
		page, derr := DecodePage(cached)
		if derr == nil {
			s.countRequest(OutcomeHit)
			return page, OutcomeHit, nil
		}
		// A corrupt entry behaves like a miss and gets overwritten below.
		s.logger.Warn("feed cache entry undecodable, treating as miss",
			"key", key,
			"error", derr)
		s.countCacheError("decode")
	}

	page, err := s.query(req)
	if err != nil {
		return nil, OutcomeMiss, err
	}
	s.populate(ctx, key, page)
	s.countRequest(OutcomeMiss)
	return page, OutcomeMiss, nil
}

// Invalidate eagerly deletes every cache entry the given hubs can appear
// under, across all orderings and buckets, plus the global scope. Best
// effort: a delete failure is logged and returned but entries also age out
// via TTL.
func (s *Service) Invalidate(ctx context.Context, hubIDs []string) error {
	if s.store == nil {
		return nil
	}

	keys := KeysForScopes(ScopesForHubs(hubIDs))
	if s.metrics != nil {
		s.metrics.IncInvalidations()
	}
	if err := s.store.Delete(ctx, keys...); err != nil {
		s.logger.Warn("feed cache invalidation failed",
			"hub_count", len(hubIDs),
			"key_count", len(keys),
			"error", err)
		s.countCacheError("delete")
		return fmt.Errorf("invalidating feed cache: %w", err)
	}
	return nil
}

// InvalidateHubs adapts Invalidate to the recompute worker's interface.
func (s *Service) InvalidateHubs(ctx context.Context, hubIDs []string) error {
	return s.Invalidate(ctx, hubIDs)
}

// query runs the ranking query builder and slices out the requested page.
func (s *Service) query(req Request) (*Page, error) {
	papers, err := s.builder.Build(req.HubID, req.Ordering, req.Window)
	if err != nil {
		return nil, fmt.Errorf("building feed: %w", err)
	}

	start := (req.Page - 1) * s.pageSize
	end := start + s.pageSize
	if start > len(papers) {
		start = len(papers)
	}
	if end > len(papers) {
		end = len(papers)
	}

	page := &Page{
		Data:      summarize(papers[start:end]),
		NoResults: len(papers) == 0,
	}
	return page, nil
}

// populate writes a freshly built first page to the cache. Write failures
// are logged and swallowed; the page is already in hand.
func (s *Service) populate(ctx context.Context, key string, page *Page) {
	encoded, err := EncodePage(page)
	if err != nil {
		s.logger.Warn("feed page encoding failed, skipping cache write",
			"key", key,
			"error", err)
		s.countCacheError("encode")
		return
	}
	if err := s.store.Set(ctx, key, encoded, s.ttl); err != nil {
		s.logger.Warn("feed cache write failed",
			"key", key,
			"error", err)
		s.countCacheError("set")
	}
}

// summarize converts papers to their feed projections.
func summarize(papers []*paper.Paper) []PaperSummary {
	summaries := make([]PaperSummary, len(papers))
	for i, p := range papers {
		summaries[i] = PaperSummary{
			ID:              p.ID,
			Title:           p.Title,
			DOI:             p.DOI,
			HubIDs:          p.HubIDs,
			Score:           p.Score,
			HotScore:        p.HotScore,
			DiscussionCount: p.DiscussionCount,
			UploadedAt:      p.UploadedAt,
		}
	}
	return summaries
}

func (s *Service) countRequest(outcome Outcome) {
	if s.metrics != nil {
		s.metrics.IncRequest(outcome)
	}
}

func (s *Service) countCacheError(operation string) {
	if s.metrics != nil {
		s.metrics.IncCacheError(operation)
	}
}
