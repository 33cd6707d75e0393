package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bimakw/wallet-explorer/internal/domain/entities"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/cache"
	"github.com/bimakw/wallet-explorer/internal/infrastructure/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	maxBodySize     = 8 << 20
	maxErrorSnippet = 256
)

// Options configures an upstream API client
type Options struct {
	Provider  string
	Timeout   time.Duration
	Cache     cache.Cache // nil disables response caching
	CacheTTL  time.Duration
	RateLimit float64 // requests per second, 0 disables pacing
	Headers   map[string]string
}

// Request describes one upstream call
type Request struct {
	Method string
	URL    string
	Body   interface{} // JSON-encoded when set

	// Check validates the decoded response. Responses failing Check are not cached.
	Check func() error
}

// Client performs JSON requests against a third-party API with a short-lived
// response cache keyed by request URL and body
type Client struct {
	provider string
	http     *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	limiter  *rate.Limiter
	headers  map[string]string
	logger   *zap.Logger
}

// New creates an upstream client
func New(opts Options, logger *zap.Logger) *Client {
	c := &Client{
		provider: opts.Provider,
		http:     &http.Client{Timeout: opts.Timeout},
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		headers:  opts.Headers,
		logger:   logger,
	}
	if opts.RateLimit > 0 {
		burst := int(opts.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return c
}

// Do sends the request and decodes a 2xx JSON body into dest.
// Every failure is reported as *entities.UpstreamError.
func (c *Client) Do(ctx context.Context, req Request, dest interface{}) error {
	var payload []byte
	if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	var cacheKey string
	if c.cache != nil && c.cacheTTL > 0 {
		cacheKey = cache.RequestKey("upstream:"+c.provider, req.URL, payload)
		err := c.cache.Get(ctx, cacheKey, dest)
		if err == nil {
			metrics.ObserveCacheLookup(c.provider, true)
			c.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn("Failed to read cached response", zap.Error(err))
		}
		metrics.ObserveCacheLookup(c.provider, false)
	}

	if err := c.fetch(ctx, req.Method, req.URL, payload, dest); err != nil {
		return err
	}

	if req.Check != nil {
		if err := req.Check(); err != nil {
			var upstreamErr *entities.UpstreamError
			if errors.As(err, &upstreamErr) {
				return err
			}
			return &entities.UpstreamError{Provider: c.provider, StatusCode: http.StatusOK, Err: err}
		}
	}

	if cacheKey != "" {
		if err := c.cache.SetWithTTL(ctx, cacheKey, dest, c.cacheTTL); err != nil {
			c.logger.Warn("Failed to cache response", zap.Error(err))
		}
	}

	return nil
}

func (c *Client) fetch(ctx context.Context, method, url string, payload []byte, dest interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &entities.UpstreamError{Provider: c.provider, Err: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.ObserveUpstreamRequest(c.provider, metrics.OutcomeTransport, time.Since(start))
		return &entities.UpstreamError{Provider: c.provider, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		metrics.ObserveUpstreamRequest(c.provider, metrics.OutcomeTransport, time.Since(start))
		return &entities.UpstreamError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ObserveUpstreamRequest(c.provider, metrics.OutcomeHTTPError, time.Since(start))
		return &entities.UpstreamError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s: %s", resp.Status, snippet(raw)),
		}
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		metrics.ObserveUpstreamRequest(c.provider, metrics.OutcomeDecodeError, time.Since(start))
		return &entities.UpstreamError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("malformed JSON response: %w", err),
		}
	}

	metrics.ObserveUpstreamRequest(c.provider, metrics.OutcomeSuccess, time.Since(start))
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorSnippet {
		s = s[:maxErrorSnippet] + "..."
	}
	return s
}
