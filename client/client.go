package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/apikit/logger"
	"github.com/kbukum/apikit/resilience"
)

const tracerName = "github.com/kbukum/apikit/client"

// Client executes API requests against one endpoint. It owns a shared
// keep-alive connection pool and is safe for concurrent use; all
// configuration is captured at construction.
type Client struct {
	httpClient *http.Client
	config     Config
	rl         *resilience.RateLimiter
	log        *logger.Logger
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		c.log = l.WithComponent("client")
	}
}

// WithHTTPClient replaces the underlying *http.Client. Useful for
// custom transports; the pool it carries is then shared by all calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client with the given configuration.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	c := &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
		log:    logger.Nop(),
	}
	if cfg.RateLimit != nil {
		c.rl = resilience.NewRateLimiter(*cfg.RateLimit)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Do executes one logical request: a single HTTP exchange plus any
// transient-failure retries the configuration allows. It blocks until
// the exchange succeeds, fails fatally, or exhausts its retry budget.
// Non-2xx terminal outcomes are *HTTPError; an unsafe redirect is a
// *RedirectError and is never retried.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	retryEnabled := c.config.RetryTransientErrors
	if req.RetryTransientErrors != nil {
		retryEnabled = *req.RetryTransientErrors
	}
	maxRetries := c.config.MaxRetries
	if req.MaxRetries > 0 {
		maxRetries = req.MaxRetries
	}

	var span trace.Span
	if c.config.EnableTracing {
		ctx, span = otel.Tracer(tracerName).Start(ctx, "http_request",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.request.method", strings.ToUpper(req.Method)),
				attribute.String("url.full", BuildURL(c.config.BaseURL, req.Path)),
			))
		defer span.End()
	}

	attempts := 0
	retryCfg := c.retryConfig(ctx, retryEnabled, maxRetries)

	resp, err := resilience.Retry(ctx, retryCfg, func() (*Response, error) {
		attempts++
		return c.doOnce(ctx, req)
	})

	if span != nil {
		span.SetAttributes(attribute.Int("http.request.resend_count", attempts-1))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			if he, ok := AsHTTPError(err); ok {
				span.SetAttributes(attribute.Int("http.response.status_code", he.StatusCode))
			}
		} else {
			span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
		}
	}
	if err != nil {
		return nil, err
	}

	c.log.Debug("request complete", map[string]any{
		logger.FieldMethod:  strings.ToUpper(req.Method),
		logger.FieldURL:     resp.URL,
		logger.FieldStatus:  resp.StatusCode,
		logger.FieldAttempt: attempts,
	})
	return resp, nil
}

// retryConfig derives the per-call retry policy from the client
// backoff shape and the effective flags.
func (c *Client) retryConfig(ctx context.Context, retryEnabled bool, maxRetries int) resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	if c.config.Backoff != nil {
		cfg = *c.config.Backoff
	}
	cfg.MaxAttempts = maxRetries + 1

	cfg.RetryIf = func(err error) bool {
		if ctx.Err() != nil {
			return false
		}
		if he, ok := AsHTTPError(err); ok {
			// Rate limiting is waited out independently of the
			// transient-error flag.
			if he.StatusCode == http.StatusTooManyRequests {
				return !c.config.IgnoreRateLimit
			}
			return retryEnabled && he.Retryable
		}
		return retryEnabled && isTimeout(err)
	}
	cfg.BackoffHint = func(err error) (time.Duration, bool) {
		if he, ok := AsHTTPError(err); ok && he.RetryAfter > 0 {
			return he.RetryAfter, true
		}
		return 0, false
	}
	cfg.OnRetry = func(attempt int, err error, backoff time.Duration) {
		c.log.WithError(err).Debug("retrying transient failure", map[string]any{
			logger.FieldAttempt: attempt,
			logger.FieldBackoff: backoff.String(),
		})
	}
	return cfg
}

// doOnce performs one physical round trip: build, send, read, check
// redirect safety, classify status.
func (c *Client) doOnce(ctx context.Context, req Request) (*Response, error) {
	if c.rl != nil {
		if err := c.rl.Wait(ctx); err != nil {
			return nil, err
		}
	}

	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	raw, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("client: send request: %w", err)
	}
	defer func() { _ = raw.Body.Close() }()

	body, err := io.ReadAll(raw.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response body: %w", err)
	}

	resp := &Response{
		StatusCode: raw.StatusCode,
		Status:     raw.Status,
		Headers:    raw.Header,
		Body:       body,
		History:    redirectHistory(raw),
	}
	if raw.Request != nil && raw.Request.URL != nil {
		resp.URL = raw.Request.URL.String()
	}

	// Redirect safety comes before status classification; an unsafe
	// redirect is fatal even if the final response was a 2xx.
	if err := validateRedirect(req.Method, resp); err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		return nil, newHTTPError(resp)
	}
	return resp, nil
}

// buildRequest constructs the *http.Request for one attempt. It runs
// per attempt, so non-stream bodies are re-encoded fresh and retries
// never resend a drained reader.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := BuildURL(c.config.BaseURL, req.Path)

	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("client: encode body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, strings.ToUpper(req.Method), target, body)
	if err != nil {
		return nil, fmt.Errorf("client: create request: %w", err)
	}

	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for key, values := range req.Query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if body != nil && contentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if h := c.config.RequestIDHeader; h != "" && httpReq.Header.Get(h) == "" {
		httpReq.Header.Set(h, uuid.NewString())
	}

	for _, intercept := range c.config.Interceptors {
		if err := intercept(ctx, httpReq); err != nil {
			return nil, fmt.Errorf("client: request interceptor: %w", err)
		}
	}

	return httpReq, nil
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
