package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ListResult is a lazy, forward-only view over a paginated list
// endpoint. Pages are fetched on demand in server-declared cursor
// order and cached; each uncached page costs one network call. A
// ListResult is not safe for concurrent use and is not restartable —
// re-list by issuing a fresh List call.
type ListResult struct {
	client   *Client
	template Request

	items      []any
	total      int
	totalKnown bool
	next       string

	pos int
	cur any
	err error
}

// List issues a GET against a list endpoint and returns a lazy handle
// over its pages. The first page is fetched eagerly so that an HTTP
// failure on the initial call surfaces here rather than on first
// iteration; later page failures surface at the access that needs
// them.
func (c *Client) List(ctx context.Context, path string, opts ...RequestOption) (*ListResult, error) {
	req := newRequest(http.MethodGet, path, nil, opts...)

	if pp := c.config.Pagination.PerPage; pp > 0 {
		if req.Query == nil {
			req.Query = url.Values{}
		}
		if req.Query.Get(c.config.Pagination.PerPageParam) == "" {
			req.Query.Set(c.config.Pagination.PerPageParam, strconv.Itoa(pp))
		}
	}

	lr := &ListResult{client: c, template: req}
	if err := lr.fetchPage(ctx, req); err != nil {
		return nil, err
	}
	return lr, nil
}

// ListAll issues a GET against a list endpoint and eagerly follows the
// cursor until the server reports no further page, returning the fully
// materialized item sequence.
func (c *Client) ListAll(ctx context.Context, path string, opts ...RequestOption) ([]any, error) {
	lr, err := c.List(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	return lr.All(ctx)
}

// Next advances the iterator, fetching the next page when the buffer
// is exhausted. It returns false at the end of the sequence or on
// error; check Err afterwards.
func (lr *ListResult) Next(ctx context.Context) bool {
	if lr.err != nil {
		return false
	}
	for lr.pos >= len(lr.items) {
		if lr.next == "" {
			return false
		}
		if err := lr.fetchPage(ctx, lr.nextRequest()); err != nil {
			lr.err = err
			return false
		}
	}
	lr.cur = lr.items[lr.pos]
	lr.pos++
	return true
}

// Item returns the element produced by the last successful Next call.
func (lr *ListResult) Item() any {
	return lr.cur
}

// Err returns the error that terminated iteration, if any.
func (lr *ListResult) Err() error {
	return lr.err
}

// At returns the item at absolute index i, transparently fetching
// whichever pages are needed to reach it. Already fetched pages are
// served from the cache.
func (lr *ListResult) At(ctx context.Context, i int) (any, error) {
	if i < 0 {
		return nil, fmt.Errorf("client: negative list index %d", i)
	}
	for i >= len(lr.items) && lr.next != "" {
		if err := lr.fetchPage(ctx, lr.nextRequest()); err != nil {
			return nil, err
		}
	}
	if i >= len(lr.items) {
		return nil, fmt.Errorf("client: list index %d out of range (%d items)", i, len(lr.items))
	}
	return lr.items[i], nil
}

// All fetches every remaining page and returns the full ordered item
// sequence. Termination is driven solely by the absence of a next-page
// cursor, never by the advisory total.
func (lr *ListResult) All(ctx context.Context) ([]any, error) {
	for lr.next != "" {
		if err := lr.fetchPage(ctx, lr.nextRequest()); err != nil {
			return nil, err
		}
	}
	return lr.items, nil
}

// Len returns the server-reported total when available, otherwise the
// number of items fetched so far.
func (lr *ListResult) Len() int {
	if lr.totalKnown {
		return lr.total
	}
	return len(lr.items)
}

// Total returns the advisory server-supplied total item count and
// whether the server supplied one.
func (lr *ListResult) Total() (int, bool) {
	return lr.total, lr.totalKnown
}

// HasMore reports whether the server declared a further page.
func (lr *ListResult) HasMore() bool {
	return lr.next != ""
}

// fetchPage runs one page request, appends its items, and records the
// advisory total and next-page cursor from the response headers.
func (lr *ListResult) fetchPage(ctx context.Context, req Request) error {
	resp, err := lr.client.Do(ctx, req)
	if err != nil {
		return err
	}

	res, err := Parse(resp)
	if err != nil {
		return err
	}
	page, ok := res.Array()
	if !ok {
		return &ParsingError{Err: fmt.Errorf("list endpoint returned %s, expected array", res.Kind())}
	}
	lr.items = append(lr.items, page...)

	pcfg := lr.client.config.Pagination
	if !lr.totalKnown {
		if t := resp.Headers.Get(pcfg.TotalHeader); t != "" {
			if n, err := strconv.Atoi(t); err == nil {
				lr.total = n
				lr.totalKnown = true
			}
		}
	}
	lr.next = nextPageTarget(resp, pcfg)
	return nil
}

// nextRequest derives the follow-up page request: same headers and
// retry overrides, but the cursor URL already carries the full query.
func (lr *ListResult) nextRequest() Request {
	req := lr.template
	req.Path = lr.next
	req.Query = nil
	return req
}

// nextPageTarget extracts the next-page cursor: a Link rel="next" URL
// when present, else a page number from the configured fallback header
// applied to the current URL. Empty means the sequence is complete.
func nextPageTarget(resp *Response, pcfg PaginationConfig) string {
	if link := parseLinkNext(resp.Headers.Get("Link")); link != "" {
		return link
	}

	page := resp.Headers.Get(pcfg.NextPageHeader)
	if page == "" {
		return ""
	}
	u, err := url.Parse(resp.URL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set(pcfg.PageParam, page)
	u.RawQuery = q.Encode()
	return u.String()
}

// parseLinkNext pulls the rel="next" target out of a Link header.
func parseLinkNext(header string) string {
	for _, part := range strings.Split(header, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(sections[0]), "<>")
		for _, param := range sections[1:] {
			kv := strings.SplitN(strings.TrimSpace(param), "=", 2)
			if len(kv) == 2 && strings.EqualFold(kv[0], "rel") && strings.Trim(kv[1], `"`) == "next" {
				return target
			}
		}
	}
	return ""
}
