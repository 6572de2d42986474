package client

import (
	"net/http"
	"strings"
)

// validateRedirect enforces redirect safety on a completed response.
// GET and HEAD are idempotent and cacheable, so standard HTTP
// semantics make their redirects safe to follow silently. Every other
// verb fails closed: 301/302/303 rewrite the method to GET, and even
// 307/308 replay the body against a URL the caller never chose.
func validateRedirect(method string, resp *Response) error {
	if len(resp.History) == 0 {
		return nil
	}

	m := strings.ToUpper(method)
	if m == http.MethodGet || m == http.MethodHead {
		return nil
	}

	// The Location header may be relative; the final response URL is
	// the resolved redirect target.
	hop := resp.History[0]
	return &RedirectError{
		Method:    m,
		Status:    hop.Status,
		SourceURL: hop.URL,
		TargetURL: resp.URL,
	}
}
