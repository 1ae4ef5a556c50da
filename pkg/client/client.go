// Package client provides the platform HTTP client with authentication,
// rate limiting, response caching, retries, and per-endpoint wrappers.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/visiongrid/visiongrid-client/pkg/auth"
	"github.com/visiongrid/visiongrid-client/pkg/cache"
	"github.com/visiongrid/visiongrid-client/pkg/ratelimit"
)

// DefaultBaseURL is the production platform endpoint.
const DefaultBaseURL = "https://api.visiongrid.io/v1"

// Prometheus metrics for request operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vgp_requests_total",
		Help: "Total platform requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vgp_request_duration_seconds",
		Help:    "Platform request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vgp_errors_total",
		Help: "Total platform request errors by class",
	}, []string{"class"})
)

// Client is the platform API client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       *auth.Token
	rateLimiter *ratelimit.Tracker
	cache       *cache.Manager
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Token authenticates requests. When nil, New resolves the active
	// token via the VISIONGRID_API_TOKEN env var or ~/.visiongrid.
	Token *auth.Token

	// BaseURL overrides the production endpoint (for testing).
	BaseURL string

	// Redis enables the shared response cache and rate limit state.
	// A nil client disables both.
	Redis *redis.Client

	// UserAgent identifies the application to the platform.
	UserAgent string

	// HTTPTimeout bounds each individual HTTP request.
	HTTPTimeout time.Duration

	// Retry configuration for transient errors.
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      "visiongrid-client-go",
		HTTPTimeout:    30 * time.Second,
		MaxRetries:     3,
		InitialBackoff: 1 * time.Second,
	}
}

// New creates a new platform client. When cfg.Token is nil the active
// token is loaded from the environment or the token store on disk.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "visiongrid-client-go"
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 1 * time.Second
	}

	token := cfg.Token
	if token == nil {
		var err error
		token, err = auth.LoadToken()
		if err != nil {
			return nil, fmt.Errorf("resolve active token: %w", err)
		}
	}

	logger := log.With().Str("component", "platform-client").Logger()

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   token,
		config:  cfg,
		logger:  logger,
	}

	if cfg.Redis != nil {
		c.rateLimiter = ratelimit.NewTracker(cfg.Redis, logger)
		c.cache = cache.NewManager(cfg.Redis)
	}

	return c, nil
}

// Token returns the token the client authenticates with.
func (c *Client) Token() *auth.Token {
	return c.token
}

// do performs an HTTP request against the platform with rate limiting,
// caching, retries, and error envelope parsing. The returned response
// always has a 2xx status; everything else is surfaced as an error.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body []byte, contentType string) (*http.Response, error) {
	return c.request(ctx, method, path, params, body, contentType, true)
}

// request is the transport core behind do. useCache=false forces a
// fresh platform read even when the response cache is enabled; polling
// endpoints and signed-URL endpoints must never serve stale answers.
func (c *Client) request(ctx context.Context, method, path string, params url.Values, body []byte, contentType string, useCache bool) (*http.Response, error) {
	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(path).Observe(time.Since(startTime).Seconds())
	}()

	if c.rateLimiter != nil {
		allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Rate limit check failed")
			return nil, fmt.Errorf("rate limit check: %w", err)
		}
		if !allowed {
			c.logger.Warn().
				Str("endpoint", path).
				Msg("Request blocked by rate limiter")
			requestsTotal.WithLabelValues(path, "rate_limited").Inc()
			return nil, ErrRateLimited
		}
	}

	// Only idempotent GETs without a body are cacheable.
	cacheable := useCache && c.cache != nil && method == http.MethodGet && body == nil
	cacheKey := cache.CacheKey{
		Endpoint:    path,
		QueryParams: params,
		TokenID:     c.token.ID,
	}

	// Fresh cache entries are served directly; expired-but-present
	// entries are revalidated with a conditional request.
	var cachedEntry *cache.CacheEntry
	if cacheable {
		entry, err := c.cache.Get(ctx, cacheKey)
		if err == nil {
			c.logger.Debug().Str("endpoint", path).Msg("Serving response from cache")
			requestsTotal.WithLabelValues(path, "cached").Inc()
			return cache.EntryToResponse(entry), nil
		}
		if err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("endpoint", path).Msg("Cache get error")
		}

		if stale, err := c.cache.GetStale(ctx, cacheKey); err == nil {
			cachedEntry = stale
		}
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var resp *http.Response
	var errClass ErrorClass

	retryCfg := RetryConfig{
		MaxAttempts:       c.config.MaxRetries,
		InitialBackoff:    c.config.InitialBackoff,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}

	retryErr := retryWithBackoff(ctx, retryCfg, func() error {
		var reqBody io.Reader
		if body != nil {
			reqBody = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
		if err != nil {
			errClass = ErrorClassClient
			return err
		}

		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		c.token.Authorize(req)

		if cacheable && cachedEntry != nil && cache.ShouldMakeConditionalRequest(cachedEntry) {
			cache.AddConditionalHeaders(req, cachedEntry)
			cache.ConditionalRequestsSent.Inc()
		}

		resp, err = c.httpClient.Do(req)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", path).Msg("HTTP request failed")
			errClass = ErrorClassNetwork
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(path, "network_error").Inc()
			return err
		}

		if c.rateLimiter != nil {
			if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.Header); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
			}
		}

		if resp.StatusCode == http.StatusNotModified {
			return nil
		}

		if resp.StatusCode >= 400 {
			errClass = classifyStatus(resp.StatusCode)
			errorsTotal.WithLabelValues(string(errClass)).Inc()
			requestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", path).
				Int("status", resp.StatusCode).
				Str("error_class", string(errClass)).
				Msg("Platform request error")

			apiErr := apiErrorFromResponse(resp)
			resp.Body.Close()
			return apiErr
		}

		requestsTotal.WithLabelValues(path, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil
	}, func(err error) ErrorClass {
		return errClass
	})

	if retryErr != nil {
		return nil, retryErr
	}

	if resp.StatusCode == http.StatusNotModified {
		if cachedEntry == nil {
			resp.Body.Close()
			return nil, fmt.Errorf("304 response without cached entry for %s", path)
		}
		c.logger.Debug().Str("endpoint", path).Msg("304 Not Modified, using cache")
		requestsTotal.WithLabelValues(path, "304").Inc()
		cache.NotModifiedResponses.Inc()

		if expiresStr := resp.Header.Get("Expires"); expiresStr != "" {
			if newExpires, err := http.ParseTime(expiresStr); err == nil {
				if err := c.cache.UpdateTTL(ctx, cacheKey, newExpires); err != nil {
					c.logger.Warn().Err(err).Msg("Failed to update cache TTL")
				}
			}
		}

		resp.Body.Close()
		return cache.EntryToResponse(cachedEntry), nil
	}

	if cacheable && resp.StatusCode == http.StatusOK {
		entry, err := cache.ResponseToEntry(resp)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to create cache entry")
		} else if entry.TTL() > 0 {
			if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to cache response")
			}
		}
	}

	return resp, nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, params, nil, "")
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

// getJSONFresh is getJSON with the response cache bypassed, for reads
// whose answer changes between calls (job state) or expires (signed
// download URLs).
func (c *Client) getJSONFresh(ctx context.Context, path string, params url.Values, out any) error {
	resp, err := c.request(ctx, http.MethodGet, path, params, nil, "", false)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

// postJSON performs a POST request with a JSON body and decodes the
// response into out. A nil out discards the response body.
func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	var body []byte
	contentType := ""
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		contentType = "application/json"
	}

	resp, err := c.do(ctx, http.MethodPost, path, nil, body, contentType)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

// putJSON performs a PUT request, optionally with a JSON body.
func (c *Client) putJSON(ctx context.Context, path string, payload any, out any) error {
	var body []byte
	contentType := ""
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		contentType = "application/json"
	}

	resp, err := c.do(ctx, http.MethodPut, path, nil, body, contentType)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

// deleteJSON performs a DELETE request.
func (c *Client) deleteJSON(ctx context.Context, path string) error {
	resp, err := c.do(ctx, http.MethodDelete, path, nil, nil, "")
	if err != nil {
		return err
	}
	return decodeJSON(resp, nil)
}

// filePart describes one file in a multipart upload.
type filePart struct {
	FieldName string
	FileName  string
	Reader    io.Reader
}

// upload performs a multipart POST with form fields and file parts and
// decodes the JSON response into out.
func (c *Client) upload(ctx context.Context, path string, fields map[string]string, files []filePart, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return fmt.Errorf("write form field %q: %w", name, err)
		}
	}

	for _, file := range files {
		part, err := writer.CreateFormFile(file.FieldName, file.FileName)
		if err != nil {
			return fmt.Errorf("create form file %q: %w", file.FieldName, err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return fmt.Errorf("copy file %q: %w", file.FileName, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, nil, buf.Bytes(), writer.FormDataContentType())
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

// uploadFile opens localPath and uploads it as the named form file.
func (c *Client) uploadFile(ctx context.Context, path, fieldName, localPath string, fields map[string]string, out any) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	return c.upload(ctx, path, fields, []filePart{{
		FieldName: fieldName,
		FileName:  filepath.Base(localPath),
		Reader:    f,
	}}, out)
}

// download streams the response body of a GET request to w. Media
// payloads are never cached.
func (c *Client) download(ctx context.Context, path string, w io.Writer) error {
	resp, err := c.request(ctx, http.MethodGet, path, nil, nil, "", false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("stream response body: %w", err)
	}
	return nil
}

// downloadToFile streams a GET response into localPath, creating parent
// directories as needed.
func (c *Client) downloadToFile(ctx context.Context, path, localPath string) error {
	if dir := filepath.Dir(localPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	defer f.Close()

	return c.download(ctx, path, f)
}

// decodeJSON decodes a response body into out and closes the body.
// A nil out drains and discards the body.
func decodeJSON(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if out == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
