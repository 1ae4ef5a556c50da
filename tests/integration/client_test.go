// Package integration exercises the full request flow of the platform
// client against a mock platform server and a real Redis instance.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/visiongrid/visiongrid-client/internal/testutil"
	"github.com/visiongrid/visiongrid-client/pkg/auth"
	"github.com/visiongrid/visiongrid-client/pkg/client"
	"github.com/visiongrid/visiongrid-client/pkg/dispatch"
	"github.com/visiongrid/visiongrid-client/pkg/jobs"
	"github.com/visiongrid/visiongrid-client/pkg/ratelimit"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

func newClient(t *testing.T, mock *testutil.MockPlatform, redisClient *redis.Client) *client.Client {
	t.Helper()

	token, err := auth.ParseToken([]byte(testutil.TestToken))
	if err != nil {
		t.Fatalf("parse test token: %v", err)
	}

	c, err := client.New(client.Config{
		Token:          token,
		BaseURL:        mock.URL(),
		Redis:          redisClient,
		InitialBackoff: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

// TestFullRequestFlow exercises rate limit gate, cache miss, request,
// header tracking, and cache fill in one round trip.
func TestFullRequestFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockPlatform()
	defer mock.Close()

	mock.SetResponse("/jobs/list", testutil.NewHealthyResponse(
		`{"jobs": [{"id": "j-1", "name": "cam-1 detect", "state": "RUNNING"}]}`))

	c := newClient(t, mock, redisClient)
	ctx := context.Background()

	list, err := c.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	if len(list) != 1 || list[0].State != jobs.StateRunning {
		t.Fatalf("jobs = %+v, want one RUNNING job", list)
	}

	// Rate limit headers from the response must be tracked in Redis.
	remaining, err := redisClient.Get(ctx, ratelimit.RedisKeyRequestsRemaining).Int()
	if err != nil {
		t.Fatalf("read rate limit state: %v", err)
	}
	if remaining != 100 {
		t.Errorf("requests_remaining = %d, want 100", remaining)
	}

	// Second call must be served from the cache.
	if _, err := c.ListJobs(ctx); err != nil {
		t.Fatalf("ListJobs() second call error = %v", err)
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("request count = %d, want 1 (cache hit expected)", got)
	}
}

// TestRateLimitBlocking verifies that a critical quota level blocks
// subsequent requests before they reach the platform.
func TestRateLimitBlocking(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockPlatform()
	defer mock.Close()

	// First response drives the shared quota state below the critical
	// threshold.
	resp := testutil.NewHealthyResponse(`{"data": []}`)
	resp.Headers["X-RateLimit-Remaining"] = "2"
	resp.Headers["X-RateLimit-Reset"] = "60"
	mock.SetResponse("/data/list", resp)

	c := newClient(t, mock, redisClient)
	ctx := context.Background()

	if _, err := c.ListData(ctx); err != nil {
		t.Fatalf("ListData() error = %v", err)
	}

	// Different endpoint, so the cache does not short-circuit.
	_, err := c.ListJobs(ctx)
	if err == nil {
		t.Fatal("ListJobs() should be blocked by the rate limit gate")
	}
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("request count = %d, want 1 (second request must not be sent)", got)
	}
}

// TestEndToEndJobLifecycle runs upload, start, wait, and state checks
// against the mock platform with the caches enabled.
func TestEndToEndJobLifecycle(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockPlatform()
	defer mock.Close()

	mock.SetResponse("/jobs/j-1/start", testutil.MockResponse{
		StatusCode: 200,
		Body:       `{}`,
		Headers:    map[string]string{"Content-Type": "application/json"},
	})
	mock.SetJobStateSequence("j-1", "QUEUED", "RUNNING", "COMPLETE")

	c := newClient(t, mock, redisClient)
	ctx := context.Background()

	if err := c.StartJob(ctx, "j-1"); err != nil {
		t.Fatalf("StartJob() error = %v", err)
	}

	err := c.WaitUntilJobCompletes(ctx, "j-1", client.PollConfig{
		PollInterval: 20 * time.Millisecond,
		MaxWaitTime:  10 * time.Second,
	})
	if err != nil {
		t.Fatalf("WaitUntilJobCompletes() error = %v", err)
	}
}

// TestBatchWaitSharedState polls several jobs in parallel through one
// client with shared Redis state.
func TestBatchWaitSharedState(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockPlatform()
	defer mock.Close()

	jobIDs := []string{"j-1", "j-2", "j-3", "j-4"}
	for _, id := range jobIDs {
		mock.SetJobStateSequence(id, "RUNNING", "COMPLETE")
	}

	c := newClient(t, mock, redisClient)
	results := c.WaitUntilJobsComplete(context.Background(), jobIDs,
		client.PollConfig{PollInterval: 20 * time.Millisecond, MaxWaitTime: 10 * time.Second},
		dispatch.Config{MaxWorkers: 4})

	for i, result := range results {
		if result.Err != nil {
			t.Errorf("job %s: %v", jobIDs[i], result.Err)
		}
		if result.Value != jobs.StateComplete {
			t.Errorf("job %s final state = %q, want COMPLETE", jobIDs[i], result.Value)
		}
	}
}
