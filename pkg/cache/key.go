package cache

import (
	"net/url"
	"sort"
	"strings"
)

// CacheKey identifies a cached platform response.
type CacheKey struct {
	// Endpoint is the platform endpoint path (e.g., "/jobs/j-123/status").
	Endpoint string

	// QueryParams are the request query parameters.
	QueryParams url.Values

	// TokenID scopes the entry to the authenticating token. Responses
	// are per-account, so entries for different tokens never collide.
	TokenID string
}

// String generates a deterministic cache key string.
// Format: vgp:endpoint:query1=val1:query2=val2:token=t-123
//
// Example:
//
//	vgp:jobs:fields=id,state:token=t-123
func (k CacheKey) String() string {
	parts := []string{"vgp"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params sorted for determinism.
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, key+"="+k.QueryParams.Get(key))
		}
	}

	if k.TokenID != "" {
		parts = append(parts, "token="+k.TokenID)
	}

	return strings.Join(parts, ":")
}
