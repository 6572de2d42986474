// Package client implements the HTTP transport core of a versioned
// REST API client: it resolves paths against a configured API root,
// executes requests with bounded retry on transient server failures,
// refuses silently redirected non-idempotent requests, decodes
// responses into typed results or typed errors, and exposes a lazy,
// paginated view over list endpoints.
//
// All calls are synchronous and blocking; the client owns a shared
// keep-alive connection pool and is safe for concurrent use. Resource
// managers build paths and payloads and hand them to Do, Get, Post,
// Put, Patch, Delete, or List.
//
//	c, err := client.New(client.Config{
//	    BaseURL:              "http://localhost/api/v4",
//	    RetryTransientErrors: true,
//	})
//
//	result, err := c.Get(ctx, "/projects/1")
//
//	pages, err := c.List(ctx, "/projects")
//	for pages.Next(ctx) {
//	    item := pages.Item()
//	    ...
//	}
//	if err := pages.Err(); err != nil {
//	    ...
//	}
package client
