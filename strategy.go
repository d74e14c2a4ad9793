package yandextoken

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/oauthkit/yandex-token/instrumentation"
	"github.com/oauthkit/yandex-token/internal/util"
)

// strategyName is the name returned by Strategy.Name().
const strategyName = "yandex-token"

// logBodyPrefixLen bounds how much of a malformed provider response body is
// echoed into logs.
const logBodyPrefixLen = 64

// OutcomeKind tags the terminal result of an authentication attempt.
type OutcomeKind int

const (
	// OutcomeSuccess means the verify function accepted the user.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeFailure means the attempt was rejected for an expected,
	// client-recoverable reason: no access token in the request, or the
	// verify function declined the user.
	OutcomeFailure

	// OutcomeError means the attempt died of an adapter-level condition:
	// the provider was unreachable or returned garbage, or the verify
	// function itself errored.
	OutcomeError
)

// String returns the lowercase name of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Info carries auxiliary detail attached to a success or failure outcome,
// such as a rejection reason supplied by the verify function.
type Info struct {
	Message string
}

// Outcome is the tagged terminal result of Strategy.Authenticate. Exactly one
// outcome is produced per attempt; encoding it as a single return value makes
// "exactly one terminal signal" hold by construction.
type Outcome struct {
	// Kind tags which of the three terminal states was reached.
	Kind OutcomeKind

	// User is the application user accepted by the verify function. Set only
	// on OutcomeSuccess.
	User any

	// Info is optional detail for success and failure outcomes.
	Info *Info

	// Err is the cause of an OutcomeError: a *FetchError, a native JSON
	// parse error, ErrIncompleteProfile, or whatever the verify function
	// returned, unwrapped.
	Err error
}

// IsSuccess reports whether the attempt authenticated a user.
func (o Outcome) IsSuccess() bool { return o.Kind == OutcomeSuccess }

// IsFailure reports whether the attempt was rejected without an error.
func (o Outcome) IsFailure() bool { return o.Kind == OutcomeFailure }

// IsError reports whether the attempt terminated with an adapter-level error.
func (o Outcome) IsError() bool { return o.Kind == OutcomeError }

// Succeed builds a success outcome.
func Succeed(user any, info *Info) Outcome {
	return Outcome{Kind: OutcomeSuccess, User: user, Info: info}
}

// Fail builds a failure outcome.
func Fail(info *Info) Outcome {
	return Outcome{Kind: OutcomeFailure, Info: info}
}

// Errored builds an error outcome.
func Errored(err error) Outcome {
	return Outcome{Kind: OutcomeError, Err: err}
}

// VerifyFunc is the integrator-supplied trust decision. It receives the
// per-request credentials and the normalized profile and finalizes the
// attempt:
//
//   - err non-nil: the attempt errors, err propagated as-is
//   - err nil and user nil: the attempt fails, info carried through
//   - otherwise: the attempt succeeds with user and info
//
// The strategy never inspects user beyond nil-ness, so any trust policy and
// user representation plug in.
type VerifyFunc func(ctx context.Context, creds Credentials, profile *Profile) (user any, info *Info, err error)

// VerifyRequestFunc is the request-aware variant of VerifyFunc, receiving the
// original request object untouched.
type VerifyRequestFunc func(ctx context.Context, req *Request, creds Credentials, profile *Profile) (user any, info *Info, err error)

// Strategy authenticates requests that carry a pre-obtained Yandex OAuth2
// access token: it extracts the token, fetches and normalizes the user's
// profile, and delegates the trust decision to the verify function.
//
// A Strategy is immutable after construction; concurrent Authenticate calls
// share nothing but the read-only configuration.
type Strategy struct {
	cfg       Config
	client    OAuth2Client
	verify    VerifyFunc
	verifyReq VerifyRequestFunc
	logger    *slog.Logger
	inst      *instrumentation.Instrumentation
}

// New creates a strategy whose verify function sees credentials and profile
// only. Construction fails when ClientID or ClientSecret is missing.
func New(cfg *Config, verify VerifyFunc) (*Strategy, error) {
	if verify == nil {
		return nil, errNilVerify
	}
	s, err := newStrategy(cfg)
	if err != nil {
		return nil, err
	}
	s.verify = verify
	return s, nil
}

// NewWithRequest creates a strategy whose verify function additionally
// receives the original request, for trust policies that depend on request
// content beyond the tokens.
func NewWithRequest(cfg *Config, verify VerifyRequestFunc) (*Strategy, error) {
	if verify == nil {
		return nil, errNilVerify
	}
	s, err := newStrategy(cfg)
	if err != nil {
		return nil, err
	}
	s.verifyReq = verify
	return s, nil
}

func newStrategy(cfg *Config) (*Strategy, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	c := *cfg
	c.applyDefaults()

	client := c.Client
	if client == nil {
		client = newClient(&c)
	}

	return &Strategy{
		cfg:    c,
		client: client,
		logger: c.Logger,
		inst:   c.Instrumentation,
	}, nil
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return strategyName
}

// Client returns the OAuth2 client the strategy fetches profiles with.
func (s *Strategy) Client() OAuth2Client {
	return s.client
}

// Authenticate runs one authentication attempt against req and returns its
// terminal outcome. Each call constructs fresh local state; nothing leaks
// into the strategy between attempts.
func (s *Strategy) Authenticate(ctx context.Context, req *Request) Outcome {
	start := time.Now()

	var span trace.Span
	if s.inst != nil {
		ctx, span = s.inst.Tracer("strategy").Start(ctx, "auth.authenticate")
		defer span.End()
	}

	outcome := s.authenticate(ctx, span, req)

	s.recordAttempt(ctx, span, outcome, start)
	return outcome
}

func (s *Strategy) authenticate(ctx context.Context, span trace.Span, req *Request) Outcome {
	creds := ExtractCredentials(req, s.cfg.AccessTokenField, s.cfg.RefreshTokenField)
	instrumentation.SetSpanAttributes(span,
		attribute.Bool(instrumentation.AttrAuthTokenPresent, creds.AccessToken != ""),
		attribute.Bool(instrumentation.AttrAuthRefreshSet, creds.RefreshToken != ""),
	)

	// Missing token is an expected client-input condition, not an error.
	if creds.AccessToken == "" {
		s.logger.Debug("Authentication rejected: no access token in request",
			"field", s.cfg.AccessTokenField)
		return Fail(&Info{Message: "You should provide " + s.cfg.AccessTokenField})
	}

	profile, err := s.fetchProfile(ctx, creds.AccessToken)
	if err != nil {
		// Provider or network trouble, not the caller's credentials.
		s.logger.Warn("Profile fetch failed", "error", err)
		return Errored(err)
	}
	instrumentation.SetSpanAttributes(span,
		attribute.String(instrumentation.AttrProfileID, profile.ID))

	user, info, err := s.runVerify(ctx, req, creds, profile)
	switch {
	case err != nil:
		return Errored(err)
	case user == nil:
		return Fail(info)
	default:
		return Succeed(user, info)
	}
}

// fetchProfile retrieves and normalizes the user's profile. Transport errors
// and non-2xx responses come back as *FetchError; parse failures propagate as
// the native JSON error kinds.
func (s *Strategy) fetchProfile(ctx context.Context, accessToken string) (*Profile, error) {
	start := time.Now()

	body, status, err := s.client.AuthenticatedGet(ctx, s.cfg.ProfileURL, accessToken)
	if err != nil {
		s.recordFetch(ctx, "transport_error", start)
		return nil, &FetchError{Err: err}
	}
	if status < 200 || status > 299 {
		s.recordFetch(ctx, "bad_status", start)
		return nil, &FetchError{StatusCode: status}
	}

	profile, err := ParseProfile(body)
	if err != nil {
		s.recordFetch(ctx, "parse_error", start)
		if s.inst != nil {
			s.inst.Metrics().ProfileParseFailures.Add(ctx, 1)
		}
		s.logger.Warn("Failed to parse profile document",
			"error", err,
			"body_prefix", util.SafeTruncate(string(body), logBodyPrefixLen))
		return nil, err
	}

	s.recordFetch(ctx, "ok", start)
	return profile, nil
}

func (s *Strategy) runVerify(ctx context.Context, req *Request, creds Credentials, profile *Profile) (any, *Info, error) {
	if s.verifyReq != nil {
		return s.verifyReq(ctx, req, creds, profile)
	}
	return s.verify(ctx, creds, profile)
}

func (s *Strategy) recordFetch(ctx context.Context, result string, start time.Time) {
	if s.inst == nil {
		return
	}
	m := s.inst.Metrics()
	attrs := metricAttrs([]attribute.KeyValue{
		attribute.String("result", result),
	})
	m.ProfileFetchesTotal.Add(ctx, 1, attrs)
	m.ProfileFetchDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
}

func (s *Strategy) recordAttempt(ctx context.Context, span trace.Span, outcome Outcome, start time.Time) {
	instrumentation.AddOutcomeAttributes(span, outcome.Kind.String())
	if outcome.IsError() {
		instrumentation.RecordError(span, outcome.Err)
	} else {
		instrumentation.SetSpanSuccess(span)
	}

	if s.inst == nil {
		return
	}
	m := s.inst.Metrics()
	attrs := metricAttrs([]attribute.KeyValue{
		attribute.String(instrumentation.AttrAuthOutcome, outcome.Kind.String()),
	})
	m.AuthenticationsTotal.Add(ctx, 1, attrs)
	m.AuthenticationDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)
}

// metricAttrs converts span-style attributes into a metric measurement option.
func metricAttrs(attrs []attribute.KeyValue) metric.MeasurementOption {
	return metric.WithAttributes(attrs...)
}
