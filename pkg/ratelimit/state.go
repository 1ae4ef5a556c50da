// Package ratelimit implements platform request quota tracking and gating.
// It monitors the X-RateLimit-Remaining and X-RateLimit-Reset headers so
// that batch workloads back off before the platform starts rejecting
// requests with 429 responses.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyRequestsRemaining = "vgp:rate_limit:requests_remaining"
	RedisKeyResetTimestamp    = "vgp:rate_limit:reset_timestamp"
	RedisKeyLastUpdate        = "vgp:rate_limit:last_update"
)

// Thresholds for rate limit decisions.
const (
	// ThresholdCritical blocks all requests when the remaining quota
	// falls below this value.
	ThresholdCritical = 5

	// ThresholdWarning applies throttling when the remaining quota
	// falls below this value.
	ThresholdWarning = 20

	// ThresholdHealthy indicates normal operation. At or above this
	// value no restrictions apply.
	ThresholdHealthy = 50
)

// State represents the current request quota state reported by the
// platform. It is shared across all client instances via Redis.
type State struct {
	// RequestsRemaining is the number of requests allowed before the
	// platform starts returning 429. Extracted from the
	// X-RateLimit-Remaining header.
	RequestsRemaining int `json:"requests_remaining"`

	// ResetAt is the timestamp when the quota window resets.
	// Calculated from the X-RateLimit-Reset header (seconds until reset).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is the timestamp when this state was last updated.
	// Used to detect stale state.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy indicates whether the quota is in a healthy state.
	// True when RequestsRemaining >= ThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked because
// the remaining quota is nearly exhausted.
func (s *State) NeedsCriticalBlock() bool {
	return s.RequestsRemaining < ThresholdCritical
}

// NeedsThrottling returns true if requests should be throttled.
func (s *State) NeedsThrottling() bool {
	return s.RequestsRemaining < ThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the quota window resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field based on current RequestsRemaining.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.RequestsRemaining >= ThresholdHealthy
}
