package feed

import "fmt"

// GlobalScope is the cache scope for the unscoped (all hubs) feed.
const GlobalScope = "all"

// ScopeForHub maps a request hub ID to a cache scope. An absent hub and the
// legacy "0" sentinel both mean the global feed.
func ScopeForHub(hubID string) string {
	if hubID == "" || hubID == "0" {
		return GlobalScope
	}
	return hubID
}

// CacheKey builds the cache key for a feed's first page. The key carries
// everything that changes the cached payload: scope, ordering, and window
// bucket. Page number is deliberately absent since only page one is cached.
func CacheKey(scope string, ordering Ordering, bucket Bucket) string {
	return fmt.Sprintf("feed:%s:%s:%s", scope, ordering, bucket)
}

// KeysForScopes enumerates every cache key any of the given scopes can
// appear under, across all orderings and buckets. Used for eager
// invalidation when a paper's ranking inputs change.
func KeysForScopes(scopes []string) []string {
	orderings := AllOrderings()
	buckets := AllBuckets()

	keys := make([]string, 0, len(scopes)*len(orderings)*len(buckets))
	for _, scope := range scopes {
		for _, ordering := range orderings {
			for _, bucket := range buckets {
				keys = append(keys, CacheKey(scope, ordering, bucket))
			}
		}
	}
	return keys
}

// ScopesForHubs returns the cache scopes touched by a paper in the given
// hubs. The global scope is always included since every paper appears in
// the unscoped feed.
func ScopesForHubs(hubIDs []string) []string {
	scopes := make([]string, 0, len(hubIDs)+1)
	scopes = append(scopes, GlobalScope)
	seen := map[string]bool{GlobalScope: true}
	for _, id := range hubIDs {
		scope := ScopeForHub(id)
		if seen[scope] {
			continue
		}
		seen[scope] = true
		scopes = append(scopes, scope)
	}
	return scopes
}
