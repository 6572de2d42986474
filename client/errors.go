package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// retryableStatuses are the server statuses the retry loop treats as
// transient. Fixed by the protocol contract, not configurable.
var retryableStatuses = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// HTTPError is returned for any non-2xx terminal outcome.
type HTTPError struct {
	// StatusCode is the HTTP status code of the failing response.
	StatusCode int
	// Reason is the reason phrase from the status line.
	Reason string
	// Message is the best-effort error message decoded from the body.
	Message string
	// Body is the raw response body.
	Body []byte
	// URL is the request URL that produced the failure.
	URL string
	// RetryAfter is the server-suggested wait from a Retry-After
	// header, zero when absent.
	RetryAfter time.Duration
	// Retryable marks statuses in the transient set (500, 502, 503,
	// 504).
	Retryable bool
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("client: HTTP %d %s: %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("client: HTTP %d %s", e.StatusCode, e.Reason)
}

// newHTTPError maps a completed non-2xx response to an *HTTPError.
func newHTTPError(resp *Response) *HTTPError {
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Reason:     statusReason(resp.Status, resp.StatusCode),
		Message:    extractErrorMessage(resp.Body),
		Body:       resp.Body,
		URL:        resp.URL,
		RetryAfter: parseRetryAfter(resp.Headers.Get("Retry-After")),
		Retryable:  retryableStatuses[resp.StatusCode],
	}
}

// RedirectError is returned when a non-idempotent request was silently
// redirected. Redirect targets are not guaranteed to preserve verb or
// body, so the caller must follow explicitly instead.
type RedirectError struct {
	// Method is the original request method.
	Method string
	// Status is the status line of the redirect response, e.g.
	// "302 Found".
	Status string
	// SourceURL is the URL the original request was sent to.
	SourceURL string
	// TargetURL is the Location the server redirected to.
	TargetURL string
}

// Error implements the error interface.
func (e *RedirectError) Error() string {
	return fmt.Sprintf(
		"client: received a %s redirection of a %s request from %s to %s; update the base URL or follow the redirect explicitly",
		e.Status, e.Method, e.SourceURL, e.TargetURL,
	)
}

// ParsingError is returned when a body declared as JSON cannot be
// decoded. The raw bytes are never silently substituted.
type ParsingError struct {
	Err error
}

// Error implements the error interface.
func (e *ParsingError) Error() string {
	return fmt.Sprintf("client: parse response body: %v", e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParsingError) Unwrap() error {
	return e.Err
}

// AsHTTPError extracts an *HTTPError from an error chain.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// IsRedirectError reports whether err is a redirect refusal.
func IsRedirectError(err error) bool {
	var re *RedirectError
	return errors.As(err, &re)
}

// IsParsingError reports whether err is a body decode failure.
func IsParsingError(err error) bool {
	var pe *ParsingError
	return errors.As(err, &pe)
}

// IsTransient reports whether err is a retryable server failure: a
// status in the transient set or a network timeout.
func IsTransient(err error) bool {
	if he, ok := AsHTTPError(err); ok {
		return he.Retryable
	}
	return isTimeout(err)
}

// isTimeout reports whether err is a connect/read timeout.
func isTimeout(err error) bool {
	var uerr *url.Error
	return errors.As(err, &uerr) && uerr.Timeout()
}

// extractErrorMessage pulls a message-like field out of a JSON error
// body, falling back to the raw body text.
func extractErrorMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "error"} {
			if v, ok := payload[key]; ok {
				if s, ok := v.(string); ok {
					return s
				}
				return fmt.Sprintf("%v", v)
			}
		}
	}
	return strings.TrimSpace(string(body))
}

// parseRetryAfter handles both delta-seconds and HTTP-date forms.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

// statusReason strips the numeric code off a status line, falling back
// to the canonical phrase for the code.
func statusReason(status string, code int) string {
	reason := strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
	if reason == "" {
		reason = http.StatusText(code)
	}
	return reason
}
