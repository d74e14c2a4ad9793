// Package instrumentation provides OpenTelemetry (OTEL) instrumentation for the
// yandex-token library.
//
// This package enables observability across the strategy and its OAuth2 client:
//   - Metrics: counters and histograms for authentication attempts, profile
//     fetches, and provider API calls
//   - Traces: spans for authentication flows and outbound provider requests
//
// # Quick Start
//
//	inst, err := instrumentation.New(instrumentation.Config{
//		ServiceName:    "my-api",
//		ServiceVersion: "1.0.0",
//		Enabled:        true,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer inst.Shutdown(context.Background())
//
//	strategy, err := yandextoken.New(&yandextoken.Config{
//		ClientID:        os.Getenv("YANDEX_CLIENT_ID"),
//		ClientSecret:    os.Getenv("YANDEX_CLIENT_SECRET"),
//		Instrumentation: inst,
//	}, verify)
//
// To export real telemetry, pass SDK providers via Config.MeterProvider and
// Config.TracerProvider; without them (or with Enabled false) the package uses
// no-op providers and adds no overhead.
//
// # Available Metrics
//
// Strategy:
//   - auth.attempts.total{outcome} - authentication attempts by terminal outcome
//   - auth.attempt.duration - attempt duration in milliseconds
//   - profile.fetches.total{result} - profile fetches by result
//   - profile.fetch.duration - fetch duration in milliseconds
//   - profile.parse.failures - malformed profile documents
//
// Client:
//   - provider.api.calls.total{provider, operation, status} - provider API calls
//   - provider.api.duration{provider, operation} - API call duration in milliseconds
//   - provider.api.errors.total{provider, operation} - failed provider API calls
//   - client.rate_limit.waits - calls delayed by the outbound rate limiter
//
// # Security Considerations
//
// This package collects observability data, not credentials. Spans and metrics
// carry only metadata: token presence flags, outcome kinds, HTTP status codes,
// and provider user identifiers. Access tokens, refresh tokens, and client
// secrets must never be attached to telemetry.
//
// # Thread Safety
//
// All instrumentation operations are thread-safe and can be called concurrently
// from multiple goroutines.
package instrumentation
