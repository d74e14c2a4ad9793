package instrumentation

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common span attribute keys
//
// SECURITY WARNING: Never log actual sensitive values (access tokens, refresh
// tokens, client secrets) in traces or metrics. Only log metadata such as
// token presence, outcome kinds, and HTTP status codes.
const (
	// Authentication attributes
	AttrAuthOutcome      = "auth.outcome"       // Terminal outcome kind (success, failure, error)
	AttrAuthTokenPresent = "auth.token_present" //nolint:gosec // Whether an access token was found (boolean)
	AttrAuthRefreshSet   = "auth.refresh_present"
	AttrAuthFailReason   = "auth.fail_reason"

	// Provider attributes
	AttrProviderName      = "provider.name"
	AttrProviderOperation = "provider.operation"
	AttrProviderErrorType = "provider.error_type"

	// Profile attributes (identifiers are non-secret provider metadata)
	AttrProfileID = "profile.id"

	// HTTP attributes
	AttrHTTPEndpoint     = "http.endpoint"
	AttrHTTPStatusCode   = "http.status_code"
	AttrHTTPResponseSize = "http.response.size"
)

// RecordError records an error on a span with proper status codes (nil-safe)
func RecordError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks a span as successful (nil-safe)
func SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// SetSpanError sets an error status on a span (nil-safe)
func SetSpanError(span trace.Span, message string) {
	if span != nil {
		span.SetStatus(codes.Error, message)
	}
}

// SetSpanAttributes sets attributes on a span (nil-safe)
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span != nil {
		span.SetAttributes(attrs...)
	}
}

// AddProviderAttributes adds provider attributes to a span (nil-safe)
func AddProviderAttributes(span trace.Span, providerName, operation string) {
	SetSpanAttributes(span,
		attribute.String(AttrProviderName, providerName),
		attribute.String(AttrProviderOperation, operation),
	)
}

// AddHTTPAttributes adds HTTP request attributes to a span (nil-safe)
func AddHTTPAttributes(span trace.Span, endpoint string, statusCode int) {
	SetSpanAttributes(span,
		attribute.String(AttrHTTPEndpoint, endpoint),
		attribute.Int(AttrHTTPStatusCode, statusCode),
	)
}

// AddOutcomeAttributes adds the terminal authentication outcome to a span (nil-safe)
func AddOutcomeAttributes(span trace.Span, outcome string) {
	if outcome != "" {
		SetSpanAttributes(span, attribute.String(AttrAuthOutcome, outcome))
	}
}
