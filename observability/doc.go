// Package observability bootstraps the OpenTelemetry tracer provider
// used by apikit. The HTTP client records one client span per logical
// request (retries included) when tracing is enabled; this package
// wires the OTLP/HTTP exporter those spans flow through.
package observability
