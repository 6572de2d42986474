// Package resilience provides retry with exponential jittered backoff
// and a token-bucket rate limiter.
//
// The retry loop is generic over the result type and fully
// caller-driven: RetryIf decides which errors are transient, and
// BackoffHint lets a caller substitute a server-suggested wait (for
// example an HTTP Retry-After value) for the computed backoff.
package resilience
