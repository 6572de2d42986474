package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/apikit/resilience"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 10

	// Default pagination protocol constants. The exact header and
	// parameter names are a contract with the target API and can be
	// overridden in PaginationConfig.
	defaultTotalHeader    = "X-Total"
	defaultNextPageHeader = "X-Next-Page"
	defaultPageParam      = "page"
	defaultPerPageParam   = "per_page"
)

// RequestInterceptor is called with the fully built request just
// before it is sent. Credential attachment and similar cross-cutting
// concerns hook in here.
type RequestInterceptor func(ctx context.Context, req *http.Request) error

// PaginationConfig names the headers and query parameters the target
// API uses for pagination.
type PaginationConfig struct {
	// TotalHeader carries the advisory total item count.
	TotalHeader string `yaml:"total_header" mapstructure:"total_header"`
	// NextPageHeader carries the numeric next-page fallback cursor,
	// used when no Link rel="next" header is present.
	NextPageHeader string `yaml:"next_page_header" mapstructure:"next_page_header"`
	// PageParam is the query parameter naming a page.
	PageParam string `yaml:"page_param" mapstructure:"page_param"`
	// PerPageParam is the query parameter naming the page size.
	PerPageParam string `yaml:"per_page_param" mapstructure:"per_page_param"`
	// PerPage is the default page size requested on list calls.
	// Zero leaves the server default in place.
	PerPage int `yaml:"per_page" mapstructure:"per_page" validate:"gte=0,lte=1000"`
}

// Config configures a Client. It is captured at construction and
// read-only afterwards; two clients in one process never share
// configuration state.
type Config struct {
	// BaseURL is the API root (scheme + host + version prefix) all
	// relative paths resolve against.
	BaseURL string `yaml:"base_url" mapstructure:"base_url" validate:"required"`

	// Timeout bounds each physical attempt (connect + read).
	// Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// UserAgent is sent as the User-Agent header when set.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// RetryTransientErrors enables the retry loop for transient server
	// failures (500, 502, 503, 504, and timeouts) on all calls.
	// Individual requests can override it.
	RetryTransientErrors bool `yaml:"retry_transient_errors" mapstructure:"retry_transient_errors"`

	// MaxRetries bounds the retries after the initial attempt.
	// Defaults to 10.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries" validate:"gte=0,lte=100"`

	// IgnoreRateLimit disables waiting out 429 responses. By default a
	// 429 is retried after the server's Retry-After interval,
	// independent of RetryTransientErrors.
	IgnoreRateLimit bool `yaml:"ignore_rate_limit" mapstructure:"ignore_rate_limit"`

	// RequestIDHeader, when set, stamps each request with a generated
	// unique ID under this header unless the caller supplied one.
	RequestIDHeader string `yaml:"request_id_header" mapstructure:"request_id_header"`

	// EnableTracing wraps each logical request (including its retries)
	// in an OpenTelemetry client span.
	EnableTracing bool `yaml:"enable_tracing" mapstructure:"enable_tracing"`

	// Pagination names the pagination protocol constants.
	Pagination PaginationConfig `yaml:"pagination" mapstructure:"pagination"`

	// Backoff shapes the retry backoff (initial, cap, factor, jitter).
	// Nil uses resilience defaults. The attempt budget always comes
	// from MaxRetries, not from this config.
	Backoff *resilience.RetryConfig `yaml:"-" mapstructure:"-"`

	// RateLimit configures an optional client-side token bucket
	// applied before every attempt. Nil disables it.
	RateLimit *resilience.RateLimiterConfig `yaml:"-" mapstructure:"-"`

	// Interceptors run in order on every built request.
	Interceptors []RequestInterceptor `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.Pagination.TotalHeader == "" {
		c.Pagination.TotalHeader = defaultTotalHeader
	}
	if c.Pagination.NextPageHeader == "" {
		c.Pagination.NextPageHeader = defaultNextPageHeader
	}
	if c.Pagination.PageParam == "" {
		c.Pagination.PageParam = defaultPageParam
	}
	if c.Pagination.PerPageParam == "" {
		c.Pagination.PerPageParam = defaultPerPageParam
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("client: base URL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("client: timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("client: max retries must not be negative")
	}
	if c.Pagination.PerPage < 0 {
		return fmt.Errorf("client: per page must not be negative")
	}
	return nil
}
