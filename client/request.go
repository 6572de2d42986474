package client

import (
	"net/http"
	"net/url"
)

// Request describes one outbound API request. A Request is built per
// call and never reused across calls.
type Request struct {
	// Method is the HTTP method (GET, POST, PUT, PATCH, DELETE, ...).
	Method string
	// Path is resolved against the client's BaseURL. A fully qualified
	// URL is used as-is.
	Path string
	// Query holds query parameters; keys may repeat.
	Query url.Values
	// Headers are request-specific headers, merged over the client
	// defaults.
	Headers map[string]string
	// Body is the request body. io.Reader, []byte, and string are sent
	// as-is; any other value is JSON-encoded. io.Reader bodies are
	// consumed on the first attempt and are not safe to retry.
	Body any
	// RetryTransientErrors overrides the client-level retry default for
	// this call. Nil keeps the client default.
	RetryTransientErrors *bool
	// MaxRetries overrides the client-level retry bound for this call.
	// Zero keeps the client default.
	MaxRetries int
}

// Redirect records one hop of a followed redirect chain.
type Redirect struct {
	// StatusCode is the redirect status (301, 302, ...).
	StatusCode int
	// Status is the full status line, e.g. "302 Found".
	Status string
	// URL is the URL the redirected request was sent to.
	URL string
	// Location is the target the server redirected to.
	Location string
}

// Response is the terminal result of an executed request. Immutable
// once returned.
type Response struct {
	// StatusCode is the HTTP status code of the final response.
	StatusCode int
	// Status is the full status line of the final response.
	Status string
	// Headers are the final response headers (case-insensitive access
	// via http.Header).
	Headers http.Header
	// Body is the fully read response body.
	Body []byte
	// URL is the URL that produced the final response.
	URL string
	// History holds prior redirect responses, ordered oldest to newest.
	// Empty when no redirect occurred.
	History []Redirect
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// redirectHistory reconstructs the redirect chain leading to resp.
// net/http links each followed request to the response that caused it
// via Request.Response; walking that chain backwards recovers the
// hops oldest-first.
func redirectHistory(resp *http.Response) []Redirect {
	var hops []Redirect
	for req := resp.Request; req != nil && req.Response != nil; {
		prior := req.Response
		hop := Redirect{
			StatusCode: prior.StatusCode,
			Status:     prior.Status,
			Location:   prior.Header.Get("Location"),
		}
		if prior.Request != nil && prior.Request.URL != nil {
			hop.URL = prior.Request.URL.String()
		}
		hops = append(hops, hop)
		req = prior.Request
	}

	// Walked newest to oldest; flip.
	for i, j := 0, len(hops)-1; i < j; i, j = i+1, j-1 {
		hops[i], hops[j] = hops[j], hops[i]
	}
	return hops
}
