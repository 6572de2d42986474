package client

import (
	"context"
	"net/http"
	"net/url"
)

// RequestOption configures a single request.
type RequestOption func(*Request)

// WithQuery adds one query parameter.
func WithQuery(key, value string) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = url.Values{}
		}
		r.Query.Add(key, value)
	}
}

// WithQueryValues merges a set of query parameters.
func WithQueryValues(values url.Values) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = url.Values{}
		}
		for key, vs := range values {
			for _, v := range vs {
				r.Query.Add(key, v)
			}
		}
	}
}

// WithHeader adds a header to the request.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// WithRetry overrides the client-level transient-retry default for
// this call.
func WithRetry(enabled bool) RequestOption {
	return func(r *Request) {
		r.RetryTransientErrors = &enabled
	}
}

// WithMaxRetries overrides the client-level retry bound for this call.
func WithMaxRetries(n int) RequestOption {
	return func(r *Request) {
		r.MaxRetries = n
	}
}

func newRequest(method, path string, body any, opts ...RequestOption) Request {
	req := Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// Get executes a GET and decodes the response.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Result, error) {
	return c.doParsed(ctx, newRequest(http.MethodGet, path, nil, opts...))
}

// Post executes a POST with an optional body and decodes the response.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Result, error) {
	return c.doParsed(ctx, newRequest(http.MethodPost, path, body, opts...))
}

// Put executes a PUT with an optional body and decodes the response.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Result, error) {
	return c.doParsed(ctx, newRequest(http.MethodPut, path, body, opts...))
}

// Patch executes a PATCH with an optional body and decodes the
// response.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Result, error) {
	return c.doParsed(ctx, newRequest(http.MethodPatch, path, body, opts...))
}

// Delete executes a DELETE and returns the raw response; most DELETE
// endpoints answer with an empty or trivial body and callers usually
// only need the status.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, newRequest(http.MethodDelete, path, nil, opts...))
}

func (c *Client) doParsed(ctx context.Context, req Request) (*Result, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return Parse(resp)
}

// Fetch executes a request and decodes the JSON response body into T.
// A decode failure is a *ParsingError.
func Fetch[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (T, error) {
	var out T
	resp, err := c.Do(ctx, newRequest(method, path, body, opts...))
	if err != nil {
		return out, err
	}
	if len(resp.Body) == 0 {
		return out, nil
	}
	if err := unmarshalStrict(resp.Body, &out); err != nil {
		return out, &ParsingError{Err: err}
	}
	return out, nil
}
