package yandextoken

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/oauthkit/yandex-token/instrumentation"
)

// Compile-time check that Client implements the OAuth2Client interface.
var _ OAuth2Client = (*Client)(nil)

// authScheme is the Authorization header scheme Yandex expects for
// token-authenticated API calls.
const authScheme = "OAuth"

// OAuth2Client is the OAuth2 capability the strategy depends on. The strategy
// holds it by composition rather than inheriting OAuth2 machinery, which keeps
// the capability mockable and the strategy free of protocol details.
type OAuth2Client interface {
	// AuthenticatedGet performs a token-authenticated GET against url and
	// returns the raw response body and HTTP status. The token travels in the
	// Authorization header, never in the query string. err is non-nil only
	// for transport-level failures; non-2xx statuses are returned for the
	// caller to classify.
	AuthenticatedGet(ctx context.Context, url, accessToken string) (body []byte, status int, err error)

	// ExchangeCode exchanges an authorization code for tokens.
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)

	// RefreshToken redeems a refresh token for a fresh token pair.
	RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// Client is the default HTTP-backed OAuth2Client, built on oauth2.Config with
// the Yandex endpoints. It adds an optional outbound rate limiter and a
// context deadline when the caller supplies none.
type Client struct {
	*oauth2.Config
	httpClient     *http.Client
	requestTimeout time.Duration
	limiter        *rate.Limiter
	logger         *slog.Logger
	inst           *instrumentation.Instrumentation
}

// NewClient creates a standalone OAuth2 client from cfg. The strategy builds
// one internally when Config.Client is not set; constructing one directly is
// only needed when sharing the client across integrations.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	c := *cfg
	c.applyDefaults()
	return newClient(&c), nil
}

// newClient assumes cfg has been validated and defaulted.
func newClient(cfg *Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit.Rate > 0 {
		burst := cfg.RateLimit.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.Rate), burst)
	}

	return &Client{
		Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthorizationURL,
				TokenURL: cfg.TokenURL,
			},
		},
		httpClient:     httpClient,
		requestTimeout: cfg.RequestTimeout,
		limiter:        limiter,
		logger:         cfg.Logger,
		inst:           cfg.Instrumentation,
	}
}

// ensureContextTimeout ensures the context has a deadline, adding one if
// needed. If the context already has a deadline, returns the original context
// with a no-op cancel.
func (c *Client) ensureContextTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.requestTimeout)
}

// waitForSlot blocks until the outbound rate limiter admits another provider
// API call, or the context is done.
func (c *Client) waitForSlot(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}

	res := c.limiter.Reserve()
	if !res.OK() {
		return fmt.Errorf("provider rate limit burst exhausted")
	}
	delay := res.Delay()
	if delay == 0 {
		return nil
	}

	if c.inst != nil {
		c.inst.Metrics().RateLimitWaits.Add(ctx, 1)
	}
	c.logger.Debug("Provider API call delayed by rate limiter", "delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		res.Cancel()
		return ctx.Err()
	}
}

// AuthenticatedGet performs a bearer-authenticated GET and returns the raw
// body and status. The access token is sent as "Authorization: OAuth <token>"
// per Yandex's API convention.
func (c *Client) AuthenticatedGet(ctx context.Context, url, accessToken string) ([]byte, int, error) {
	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	var span trace.Span
	if c.inst != nil {
		ctx, span = c.inst.Tracer("client").Start(ctx, "provider.yandex.authenticated_get")
		defer span.End()
	}
	instrumentation.AddProviderAttributes(span, ProviderName, "authenticated_get")

	start := time.Now()

	if err := c.waitForSlot(ctx); err != nil {
		c.recordAPICall(ctx, "authenticated_get", 0, start, err)
		instrumentation.RecordError(span, err)
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.recordAPICall(ctx, "authenticated_get", 0, start, err)
		instrumentation.RecordError(span, err)
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", authScheme+" "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.recordAPICall(ctx, "authenticated_get", 0, start, err)
		instrumentation.RecordError(span, err)
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.recordAPICall(ctx, "authenticated_get", resp.StatusCode, start, err)
		instrumentation.RecordError(span, err)
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	c.recordAPICall(ctx, "authenticated_get", resp.StatusCode, start, nil)
	instrumentation.AddHTTPAttributes(span, url, resp.StatusCode)
	instrumentation.SetSpanAttributes(span,
		attribute.Int(instrumentation.AttrHTTPResponseSize, len(body)))
	instrumentation.SetSpanSuccess(span)

	return body, resp.StatusCode, nil
}

// ExchangeCode exchanges an authorization code for tokens at the Yandex token
// endpoint.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	if err := c.waitForSlot(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.Exchange(ctx, code)
	c.recordAPICall(ctx, "exchange_code", 0, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// RefreshToken redeems a refresh token for a fresh access token.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	ctx, cancel := c.ensureContextTimeout(ctx)
	defer cancel()

	if err := c.waitForSlot(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	c.recordAPICall(ctx, "refresh_token", 0, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return token, nil
}

// recordAPICall records provider API call metrics (nil-safe on instrumentation).
func (c *Client) recordAPICall(ctx context.Context, operation string, status int, start time.Time, err error) {
	if c.inst == nil {
		return
	}
	m := c.inst.Metrics()
	attrs := []attribute.KeyValue{
		attribute.String(instrumentation.AttrProviderName, ProviderName),
		attribute.String(instrumentation.AttrProviderOperation, operation),
	}
	if status != 0 {
		attrs = append(attrs, attribute.Int(instrumentation.AttrHTTPStatusCode, status))
	}

	m.ProviderAPICallsTotal.Add(ctx, 1, metricAttrs(attrs))
	m.ProviderAPIDuration.Record(ctx, float64(time.Since(start).Milliseconds()), metricAttrs(attrs))
	if err != nil {
		m.ProviderAPIErrors.Add(ctx, 1, metricAttrs(attrs))
	}
}
