package restclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"orderenricher/internal/config"
	apperrors "orderenricher/internal/errors"
	"orderenricher/internal/infrastructure/metrics"
)

const defaultMaxResponseSize = 10 * 1024 * 1024

// Client issues authenticated GET requests against one JSON API.
type Client struct {
	httpClient      *http.Client
	baseURL         string
	headers         http.Header
	limiter         *rate.Limiter
	maxResponseSize int64
	metrics         *metrics.Metrics
	logger          *zap.Logger
}

func New(baseURL string, headers http.Header, cfg config.HTTPClientConfig, m *metrics.Metrics, logger *zap.Logger) *Client {
	limit := rate.Inf
	burst := cfg.RateBurst
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		if burst <= 0 {
			burst = 1
		}
	}

	maxSize := int64(defaultMaxResponseSize)
	if cfg.MaxRespMiB > 0 {
		maxSize = int64(cfg.MaxRespMiB) * 1024 * 1024
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		headers:         headers.Clone(),
		limiter:         rate.NewLimiter(limit, burst),
		maxResponseSize: maxSize,
		metrics:         m,
		logger:          logger,
	}
}

// GetJSON fetches path and decodes the body into out. resource names the
// fetched entity in errors, metrics and logs. A 204 response leaves out
// untouched.
func (c *Client) GetJSON(ctx context.Context, resource, path string, query url.Values, out interface{}) error {
	start := time.Now()
	outcome := "success"
	defer func() {
		c.metrics.UpstreamRequests.WithLabelValues(resource, outcome).Inc()
		c.metrics.UpstreamDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		outcome = "transport_error"
		return apperrors.NewTransportError(resource, fmt.Errorf("waiting for rate limiter: %w", err))
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		outcome = "transport_error"
		return apperrors.NewTransportError(resource, fmt.Errorf("creating request: %w", err))
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		outcome = "transport_error"
		return apperrors.NewTransportError(resource, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream response",
		zap.String("resource", resource),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "upstream_error"
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxResponseSize))
		return apperrors.NewUpstreamFetchError(resource, resp.StatusCode)
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseSize+1))
	if err != nil {
		outcome = "transport_error"
		return apperrors.NewTransportError(resource, fmt.Errorf("reading body: %w", err))
	}
	if int64(len(body)) > c.maxResponseSize {
		outcome = "malformed"
		return apperrors.NewMalformedResponseError(resource, fmt.Errorf("body exceeds %d bytes", c.maxResponseSize))
	}

	if err := json.Unmarshal(body, out); err != nil {
		outcome = "malformed"
		return apperrors.NewMalformedResponseError(resource, err)
	}

	return nil
}
