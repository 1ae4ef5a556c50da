//go:build integration

package client

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/visiongrid/visiongrid-client/internal/testutil"
	"github.com/visiongrid/visiongrid-client/pkg/auth"
)

// setupRedisContainer creates a Redis container for integration testing.
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}
	return client, cleanup
}

func newIntegrationClient(t *testing.T, mock *testutil.MockPlatform, redisClient *redis.Client) *Client {
	t.Helper()

	token, err := auth.ParseToken([]byte(testutil.TestToken))
	if err != nil {
		t.Fatalf("parse test token: %v", err)
	}

	c, err := New(Config{
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

func TestIntegration_ResponseCaching(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockPlatform()
	defer mock.Close()

	mock.SetResponse("/jobs/list", testutil.NewHealthyResponse(`{"jobs": [{"id": "j-1", "state": "RUNNING"}]}`))

	c := newIntegrationClient(t, mock, redisClient)
	ctx := context.Background()

	first, err := c.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs() first call error = %v", err)
	}

	second, err := c.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs() second call error = %v", err)
	}

	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Errorf("cached response differs: first = %+v, second = %+v", first, second)
	}

	// Second call must be served from cache without hitting the server.
	if got := mock.GetRequestCount(); got != 1 {
		t.Errorf("request count = %d, want 1", got)
	}
}

func TestIntegration_ConditionalRevalidation(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockPlatform()
	defer mock.Close()

	etag := `"jobs-v1"`
	mock.SetHandler("/jobs/list", testutil.NewConditionalHandler(etag, `{"jobs": []}`))

	c := newIntegrationClient(t, mock, redisClient)
	ctx := context.Background()

	if _, err := c.ListJobs(ctx); err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}

	// Drop the fresh entry so the next call has to go to the server.
	if err := redisClient.Del(ctx, "vgp:jobs/list:token=t-test-1").Err(); err != nil {
		t.Fatalf("delete cache entry: %v", err)
	}

	if _, err := c.ListJobs(ctx); err != nil {
		t.Fatalf("ListJobs() after expiry error = %v", err)
	}
}

func TestIntegration_RateLimitStateShared(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	mock := testutil.NewMockPlatform()
	defer mock.Close()

	mock.SetResponse("/data/list", testutil.NewHealthyResponse(`{"data": []}`))

	c := newIntegrationClient(t, mock, redisClient)
	ctx := context.Background()

	if _, err := c.ListData(ctx); err != nil {
		t.Fatalf("ListData() error = %v", err)
	}

	// The rate limit headers from the response must land in Redis.
	remaining, err := redisClient.Get(ctx, "vgp:rate_limit:requests_remaining").Int()
	if err != nil {
		t.Fatalf("read rate limit state: %v", err)
	}
	if remaining != 100 {
		t.Errorf("requests_remaining = %d, want 100 from mock headers", remaining)
	}
}
