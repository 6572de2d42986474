package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
)

func newListClient(t *testing.T, srvURL string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: srvURL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func itemName(t *testing.T, item any) string {
	t.Helper()
	obj, ok := item.(map[string]any)
	if !ok {
		t.Fatalf("expected object item, got %T", item)
	}
	name, _ := obj["name"].(string)
	return name
}

func TestList_SinglePage(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Total", "1")
		w.Write([]byte(`[{"name": "project1"}]`))
	}))
	defer srv.Close()

	c := newListClient(t, srv.URL)
	ctx := context.Background()

	lr, err := c.List(ctx, "/projects")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lr.Len() != 1 {
		t.Errorf("expected Len 1, got %d", lr.Len())
	}
	if total, ok := lr.Total(); !ok || total != 1 {
		t.Errorf("expected advisory total 1, got %d (%v)", total, ok)
	}
	if lr.HasMore() {
		t.Error("single page should report no further pages")
	}

	if !lr.Next(ctx) {
		t.Fatal("expected one item")
	}
	if got := itemName(t, lr.Item()); got != "project1" {
		t.Errorf("unexpected item: %q", got)
	}
	if lr.Next(ctx) {
		t.Error("expected iteration to end after one item")
	}
	if lr.Err() != nil {
		t.Errorf("unexpected iteration error: %v", lr.Err())
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected exactly 1 call, got %d", n)
	}

	atomic.StoreInt32(&calls, 0)
	items, err := c.ListAll(ctx, "/projects")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("expected 1 item, got %d", len(items))
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected exactly 1 call, got %d", n)
	}
}

// pagedServer serves three pages of two items each, advertising the
// next page through a Link rel="next" header.
func pagedServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			page, _ = strconv.Atoi(p)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Total", "6")
		if page < 3 {
			w.Header().Set("Link",
				fmt.Sprintf(`<%s/projects?page=%d>; rel="next", <%s/projects?page=1>; rel="first"`,
					srv.URL, page+1, srv.URL))
		}
		fmt.Fprintf(w, `[{"name": "p%d"}, {"name": "p%d"}]`, 2*page-1, 2*page)
	}))
	return srv
}

func TestList_MultiPageLinkHeader(t *testing.T) {
	var calls int32
	srv := pagedServer(t, &calls)
	defer srv.Close()

	c := newListClient(t, srv.URL)
	ctx := context.Background()

	lr, err := c.List(ctx, "/projects")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !lr.HasMore() {
		t.Error("expected a next page after the first fetch")
	}
	if lr.Len() != 6 {
		t.Errorf("expected advisory total 6, got %d", lr.Len())
	}

	var names []string
	for lr.Next(ctx) {
		names = append(names, itemName(t, lr.Item()))
	}
	if lr.Err() != nil {
		t.Fatalf("unexpected iteration error: %v", lr.Err())
	}

	want := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	if len(names) != len(want) {
		t.Fatalf("expected %d items, got %d: %v", len(want), len(names), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("item %d: expected %q, got %q", i, want[i], names[i])
		}
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("expected 3 page fetches, got %d", n)
	}
}

func TestList_NextPageHeaderFallback(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			w.Write([]byte(`[{"name": "p2"}]`))
			return
		}
		w.Header().Set("X-Next-Page", "2")
		w.Write([]byte(`[{"name": "p1"}]`))
	}))
	defer srv.Close()

	c := newListClient(t, srv.URL)
	items, err := c.ListAll(context.Background(), "/projects")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if got := itemName(t, items[1]); got != "p2" {
		t.Errorf("unexpected second item: %q", got)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected 2 calls, got %d", n)
	}
}

func TestList_At(t *testing.T) {
	var calls int32
	srv := pagedServer(t, &calls)
	defer srv.Close()

	c := newListClient(t, srv.URL)
	ctx := context.Background()

	lr, err := c.List(ctx, "/projects")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected 1 eager fetch, got %d", n)
	}

	item, err := lr.At(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := itemName(t, item); got != "p4" {
		t.Errorf("expected p4 at index 3, got %q", got)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected 2 fetches to reach index 3, got %d", n)
	}

	// Cached pages are never refetched.
	if _, err := lr.At(ctx, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("expected cached access, got %d fetches", n)
	}

	if _, err := lr.At(ctx, 10); err == nil {
		t.Error("expected out of range error")
	}
	if _, err := lr.At(ctx, -1); err == nil {
		t.Error("expected negative index error")
	}
}

func TestList_EmptyFirstPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newListClient(t, srv.URL)
	ctx := context.Background()

	lr, err := c.List(ctx, "/projects")
	if err != nil {
		t.Fatalf("empty list is not an error: %v", err)
	}
	if lr.Len() != 0 {
		t.Errorf("expected Len 0, got %d", lr.Len())
	}
	if lr.Next(ctx) {
		t.Error("expected no items")
	}
	if lr.Err() != nil {
		t.Errorf("unexpected error: %v", lr.Err())
	}
}

func TestList_FirstPageHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newListClient(t, srv.URL)
	_, err := c.List(context.Background(), "/projects")
	he, ok := AsHTTPError(err)
	if !ok {
		t.Fatalf("expected *HTTPError, got %v", err)
	}
	if he.StatusCode != 404 {
		t.Errorf("expected 404, got %d", he.StatusCode)
	}
}

func TestList_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`["name": "project1"]`))
	}))
	defer srv.Close()

	c := newListClient(t, srv.URL)
	if _, err := c.List(context.Background(), "/projects"); !IsParsingError(err) {
		t.Fatalf("expected *ParsingError, got %v", err)
	}
}

func TestList_ObjectBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "project1"}`))
	}))
	defer srv.Close()

	c := newListClient(t, srv.URL)
	if _, err := c.List(context.Background(), "/projects"); !IsParsingError(err) {
		t.Fatalf("expected *ParsingError for non-array body, got %v", err)
	}
}

func TestList_MidIterationFailure(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Link", fmt.Sprintf(`<%s/projects?page=2>; rel="next"`, srv.URL))
		w.Write([]byte(`[{"name": "p1"}, {"name": "p2"}]`))
	}))
	defer srv.Close()

	c := newListClient(t, srv.URL)
	ctx := context.Background()

	lr, err := c.List(ctx, "/projects")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	for lr.Next(ctx) {
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 items before the failure, got %d", count)
	}
	he, ok := AsHTTPError(lr.Err())
	if !ok {
		t.Fatalf("expected *HTTPError from Err(), got %v", lr.Err())
	}
	if he.StatusCode != 500 {
		t.Errorf("expected 500, got %d", he.StatusCode)
	}
}

func TestList_PerPageInjection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "50" {
			t.Errorf("expected per_page=50, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := New(Config{
		BaseURL:    srv.URL,
		Pagination: PaginationConfig{PerPage: 50},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := c.List(context.Background(), "/projects"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseLinkNext(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "next first",
			header: `<http://localhost/p?page=2>; rel="next", <http://localhost/p?page=1>; rel="first"`,
			want:   "http://localhost/p?page=2",
		},
		{
			name:   "next last",
			header: `<http://localhost/p?page=1>; rel="prev", <http://localhost/p?page=3>; rel="next"`,
			want:   "http://localhost/p?page=3",
		},
		{
			name:   "no next relation",
			header: `<http://localhost/p?page=1>; rel="first", <http://localhost/p?page=9>; rel="last"`,
			want:   "",
		},
		{
			name:   "unquoted rel",
			header: `<http://localhost/p?page=4>; rel=next`,
			want:   "http://localhost/p?page=4",
		},
		{
			name:   "empty header",
			header: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLinkNext(tt.header); got != tt.want {
				t.Errorf("parseLinkNext(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}
