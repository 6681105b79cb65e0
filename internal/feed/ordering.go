// Package feed builds ranked paper feeds: ordering and window parsing, the
// ranking query builder, the cache key router, and the cached feed service.
package feed

import "strings"

// Ordering selects how a feed is ranked.
type Ordering int

// Feed orderings.
const (
	OrderingUnknown Ordering = iota
	OrderingHot
	OrderingTopRated
	OrderingMostDiscussed
	OrderingNewest
)

// ParseOrdering maps a request parameter to an Ordering. Matching is
// case-insensitive and accepts the aliases clients historically used.
// Unrecognized values map to OrderingUnknown, which callers treat as the
// all-time score fallback rather than an error.
func ParseOrdering(s string) Ordering {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hot":
		return OrderingHot
	case "top_rated", "score":
		return OrderingTopRated
	case "most_discussed", "discussed":
		return OrderingMostDiscussed
	case "newest":
		return OrderingNewest
	default:
		return OrderingUnknown
	}
}

// String returns the canonical name of the ordering, used in cache keys.
func (o Ordering) String() string {
	switch o {
	case OrderingHot:
		return "hot"
	case OrderingTopRated:
		return "top_rated"
	case OrderingMostDiscussed:
		return "most_discussed"
	case OrderingNewest:
		return "newest"
	default:
		return "unknown"
	}
}

// AllOrderings lists every ordering a cache key can carry, including the
// unknown fallback. Invalidation enumerates this list.
func AllOrderings() []Ordering {
	return []Ordering{
		OrderingUnknown,
		OrderingHot,
		OrderingTopRated,
		OrderingMostDiscussed,
		OrderingNewest,
	}
}
