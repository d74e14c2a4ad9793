package yandextoken

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oauthkit/yandex-token/instrumentation"
)

// Default Yandex OAuth endpoints
const (
	DefaultAuthorizationURL = "https://oauth.yandex.com/authorize"
	DefaultTokenURL         = "https://oauth.yandex.com/token"
	DefaultProfileURL       = "https://login.yandex.ru/info"
)

// Default request field names the tokens are looked up under
const (
	DefaultAccessTokenField  = "access_token"
	DefaultRefreshTokenField = "refresh_token"
)

// defaultRequestTimeout bounds provider API calls when the caller's context
// carries no deadline.
const defaultRequestTimeout = 30 * time.Second

// Config holds the strategy configuration. ClientID and ClientSecret are
// required; every other field has a usable default. Config is read once at
// construction time and never mutated afterwards, so a single strategy is
// safe for concurrent authentication attempts.
type Config struct {
	// ClientID is the Yandex OAuth application ID (required).
	ClientID string

	// ClientSecret is the Yandex OAuth application secret (required).
	ClientSecret string

	// AuthorizationURL overrides the Yandex authorization endpoint.
	AuthorizationURL string

	// TokenURL overrides the Yandex token endpoint.
	TokenURL string

	// ProfileURL overrides the Yandex profile endpoint.
	ProfileURL string

	// AccessTokenField is the request field the access token is looked up
	// under. Default: "access_token".
	AccessTokenField string

	// RefreshTokenField is the request field the refresh token is looked up
	// under. Default: "refresh_token".
	RefreshTokenField string

	// HTTPClient is an optional custom HTTP client for provider API calls.
	// Deadlines and retry policy, if desired, belong here; the strategy
	// itself never retries.
	HTTPClient *http.Client

	// RequestTimeout is applied to provider API calls whose context carries
	// no deadline. Default: 30s.
	RequestTimeout time.Duration

	// Logger for structured logging (optional, uses slog.Default if not provided).
	Logger *slog.Logger

	// RateLimit configures client-side limiting of outbound provider API
	// calls. Zero disables limiting.
	RateLimit RateLimitConfig

	// Instrumentation enables OpenTelemetry metrics and tracing (optional).
	Instrumentation *instrumentation.Instrumentation

	// Client overrides the default HTTP-backed OAuth2 client. Useful for
	// tests and for callers that already own OAuth2 plumbing.
	Client OAuth2Client
}

// RateLimitConfig holds outbound rate limiting configuration
type RateLimitConfig struct {
	// Rate is provider API calls per second allowed. Zero disables limiting.
	Rate int

	// Burst is the maximum burst size allowed.
	Burst int
}

// validate checks required fields before any defaults are applied.
func (c *Config) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("client ID is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("client secret is required")
	}
	return nil
}

// applyDefaults fills in the provider URL, field name, timeout, and logger
// defaults. Called once at construction time on the strategy's private copy.
func (c *Config) applyDefaults() {
	if c.AuthorizationURL == "" {
		c.AuthorizationURL = DefaultAuthorizationURL
	}
	if c.TokenURL == "" {
		c.TokenURL = DefaultTokenURL
	}
	if c.ProfileURL == "" {
		c.ProfileURL = DefaultProfileURL
	}
	if c.AccessTokenField == "" {
		c.AccessTokenField = DefaultAccessTokenField
	}
	if c.RefreshTokenField == "" {
		c.RefreshTokenField = DefaultRefreshTokenField
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
