package instrumentation

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments for the strategy library
type Metrics struct {
	// Strategy metrics
	AuthenticationsTotal   metric.Int64Counter
	AuthenticationDuration metric.Float64Histogram

	// Profile metrics
	ProfileFetchesTotal  metric.Int64Counter
	ProfileFetchDuration metric.Float64Histogram
	ProfileParseFailures metric.Int64Counter

	// Provider API metrics
	ProviderAPICallsTotal metric.Int64Counter
	ProviderAPIDuration   metric.Float64Histogram
	ProviderAPIErrors     metric.Int64Counter

	// Client rate limiting
	RateLimitWaits metric.Int64Counter
}

// newMetrics creates and registers all metric instruments
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}

	strategyMeter := inst.Meter("strategy")
	clientMeter := inst.Meter("client")

	var err error
	m.AuthenticationsTotal, err = strategyMeter.Int64Counter(
		"auth.attempts.total",
		metric.WithDescription("Total number of authentication attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth.attempts.total counter: %w", err)
	}

	m.AuthenticationDuration, err = strategyMeter.Float64Histogram(
		"auth.attempt.duration",
		metric.WithDescription("Authentication attempt duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth.attempt.duration histogram: %w", err)
	}

	m.ProfileFetchesTotal, err = strategyMeter.Int64Counter(
		"profile.fetches.total",
		metric.WithDescription("Total number of profile fetches by result"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile.fetches.total counter: %w", err)
	}

	m.ProfileFetchDuration, err = strategyMeter.Float64Histogram(
		"profile.fetch.duration",
		metric.WithDescription("Profile fetch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile.fetch.duration histogram: %w", err)
	}

	m.ProfileParseFailures, err = strategyMeter.Int64Counter(
		"profile.parse.failures",
		metric.WithDescription("Number of profile documents that failed to parse"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile.parse.failures counter: %w", err)
	}

	m.ProviderAPICallsTotal, err = clientMeter.Int64Counter(
		"provider.api.calls.total",
		metric.WithDescription("Total number of provider API calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.calls.total counter: %w", err)
	}

	m.ProviderAPIDuration, err = clientMeter.Float64Histogram(
		"provider.api.duration",
		metric.WithDescription("Provider API call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.duration histogram: %w", err)
	}

	m.ProviderAPIErrors, err = clientMeter.Int64Counter(
		"provider.api.errors.total",
		metric.WithDescription("Number of failed provider API calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.errors.total counter: %w", err)
	}

	m.RateLimitWaits, err = clientMeter.Int64Counter(
		"client.rate_limit.waits",
		metric.WithDescription("Number of provider API calls delayed by the outbound rate limiter"),
		metric.WithUnit("{wait}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client.rate_limit.waits counter: %w", err)
	}

	return m, nil
}
