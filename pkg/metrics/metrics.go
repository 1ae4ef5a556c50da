// Package metrics provides the centralized Prometheus metrics registry for
// the platform client. Metrics are defined in their respective packages
// (client, cache, ratelimit, dispatch) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the platform client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Rate Limit Metrics (pkg/ratelimit):
//   - vgp_rate_limit_requests_remaining (Gauge): Requests remaining in the current quota window
//   - vgp_rate_limit_blocks_total (Counter): Requests blocked due to critical quota level
//   - vgp_rate_limit_throttles_total (Counter): Requests throttled due to low quota level
//
// Cache Metrics (pkg/cache):
//   - vgp_cache_hits_total{layer="redis"} (Counter): Cache hits by layer
//   - vgp_cache_misses_total (Counter): Cache misses
//   - vgp_cache_size_bytes{layer="redis"} (Gauge): Current cache size in bytes
//   - vgp_304_responses_total (Counter): 304 Not Modified responses
//   - vgp_conditional_requests_total (Counter): Conditional requests sent with If-None-Match
//   - vgp_cache_errors_total{operation} (Counter): Cache operation errors
//
// Request Metrics (pkg/client):
//   - vgp_requests_total{endpoint, status} (Counter): Total requests by endpoint and HTTP status
//   - vgp_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - vgp_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network)
//
// Retry Metrics (pkg/client):
//   - vgp_retries_total{error_class} (Counter): Retry attempts by error class
//   - vgp_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - vgp_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Job Poll Metrics (pkg/client):
//   - vgp_job_polls_total{outcome} (Counter): Job status polls by outcome (complete, failed, pending, timeout)
//   - vgp_job_wait_duration_seconds (Histogram): Time spent waiting for job completion
//
// Dispatch Metrics (pkg/dispatch):
//   - vgp_dispatch_tasks_total{outcome} (Counter): Dispatched tasks by outcome (ok, error, cancelled)
//   - vgp_dispatch_task_duration_seconds (Histogram): Per-task duration
//   - vgp_dispatch_batch_size (Histogram): Inputs per Map call
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(vgp_cache_hits_total[5m])) /
//   (sum(rate(vgp_cache_hits_total[5m])) + sum(rate(vgp_cache_misses_total[5m])))
//
//   # Quota Status
//   vgp_rate_limit_requests_remaining < 20
//
//   # Request Error Rate
//   rate(vgp_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(vgp_request_duration_seconds_bucket[5m]))
//
//   # Job Failure Rate
//   rate(vgp_job_polls_total{outcome="failed"}[5m])
