// Package cache provides response caching for platform GET endpoints
// with a Redis backend.
//
// List and detail responses change rarely relative to how often
// services poll them, so the cache manager stores parsed responses in
// Redis, shared across client instances, with the following features:
//
// - TTL derived from the platform Expires header, with a fallback default
// - ETag support for conditional revalidation (If-None-Match)
// - Last-Modified support (If-Modified-Since)
// - Token-scoped keys (responses are per-account)
// - Prometheus metrics for observability
// - Deterministic cache key generation
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := cache.NewManager(redisClient)
//
//	key := cache.CacheKey{
//		Endpoint:    "/jobs",
//		QueryParams: url.Values{"fields": []string{"id,name,state"}},
//		TokenID:     "t-123",
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// Cache miss - fetch from the platform
//	}
//
// # HTTP Response Caching
//
//	entry, err := cache.ResponseToEntry(resp)
//	if err != nil {
//		return err
//	}
//	if err := manager.Set(ctx, key, entry); err != nil {
//		return err
//	}
//
// # Conditional Requests
//
//	if cache.ShouldMakeConditionalRequest(entry) {
//		cache.AddConditionalHeaders(req, entry)
//		// The platform returns 304 if the resource is unchanged.
//	}
//
// # Metrics
//
// The cache manager exports Prometheus metrics:
//
//   - vgp_cache_hits_total{layer="redis"} - Cache hits
//   - vgp_cache_misses_total - Cache misses
//   - vgp_cache_size_bytes{layer="redis"} - Cache size
//   - vgp_304_responses_total - Conditional request successes
//   - vgp_cache_errors_total{operation} - Cache operation errors
//
// Caching is optional: clients constructed without a Redis connection
// issue every request directly.
package cache
