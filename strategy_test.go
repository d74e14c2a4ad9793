package yandextoken

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"golang.org/x/oauth2"

	"github.com/oauthkit/yandex-token/internal/testutil"
)

// mockClient is an OAuth2Client with scriptable AuthenticatedGet behavior.
type mockClient struct {
	body   []byte
	status int
	err    error

	mu      sync.Mutex
	calls   int
	lastURL string
}

func (m *mockClient) AuthenticatedGet(_ context.Context, url, _ string) ([]byte, int, error) {
	m.mu.Lock()
	m.calls++
	m.lastURL = url
	m.mu.Unlock()
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.body, m.status, nil
}

func (m *mockClient) ExchangeCode(context.Context, string) (*oauth2.Token, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) RefreshToken(context.Context, string) (*oauth2.Token, error) {
	return nil, errors.New("not implemented")
}

func newTestStrategy(t *testing.T, client OAuth2Client, verify VerifyFunc) *Strategy {
	t.Helper()
	strategy, err := New(&Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		Client:       client,
	}, verify)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return strategy
}

func TestAuthenticate_MissingAccessToken(t *testing.T) {
	client := &mockClient{}
	strategy := newTestStrategy(t, client, func(context.Context, Credentials, *Profile) (any, *Info, error) {
		t.Fatal("verify must not run without an access token")
		return nil, nil, nil
	})

	outcome := strategy.Authenticate(context.Background(), &Request{})

	if !outcome.IsFailure() {
		t.Fatalf("Kind = %v, want failure", outcome.Kind)
	}
	if outcome.Info == nil || outcome.Info.Message != "You should provide access_token" {
		t.Errorf("Info = %+v, want message %q", outcome.Info, "You should provide access_token")
	}
	if client.calls != 0 {
		t.Errorf("profile fetch ran %d times, want 0", client.calls)
	}
}

func TestAuthenticate_MissingAccessToken_CustomFieldName(t *testing.T) {
	strategy, err := New(&Config{
		ClientID:         "test-client-id",
		ClientSecret:     "test-client-secret",
		AccessTokenField: "oauth_token",
		Client:           &mockClient{},
	}, func(context.Context, Credentials, *Profile) (any, *Info, error) {
		return nil, nil, nil
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	outcome := strategy.Authenticate(context.Background(), &Request{
		// Present under the default name, but the strategy only reads the
		// configured field.
		Query: map[string]string{"access_token": "ignored"},
	})

	if !outcome.IsFailure() {
		t.Fatalf("Kind = %v, want failure", outcome.Kind)
	}
	if outcome.Info == nil || outcome.Info.Message != "You should provide oauth_token" {
		t.Errorf("Info = %+v, want message %q", outcome.Info, "You should provide oauth_token")
	}
}

func TestAuthenticate_Success(t *testing.T) {
	client := &mockClient{body: []byte(testutil.SampleProfileBody), status: 200}

	type appUser struct{ ID string }
	wantUser := &appUser{ID: "00000000"}
	wantInfo := &Info{Message: "foo"}

	var verifyCalls int
	var gotCreds Credentials
	var gotProfile *Profile
	strategy := newTestStrategy(t, client, func(_ context.Context, creds Credentials, profile *Profile) (any, *Info, error) {
		verifyCalls++
		gotCreds = creds
		gotProfile = profile
		return wantUser, wantInfo, nil
	})

	outcome := strategy.Authenticate(context.Background(), &Request{
		Body: map[string]string{
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
		},
	})

	if !outcome.IsSuccess() {
		t.Fatalf("Kind = %v (err %v), want success", outcome.Kind, outcome.Err)
	}
	if outcome.User != any(wantUser) {
		t.Errorf("User = %v, want %v", outcome.User, wantUser)
	}
	if outcome.Info != wantInfo {
		t.Errorf("Info = %v, want %v", outcome.Info, wantInfo)
	}
	if verifyCalls != 1 {
		t.Errorf("verify ran %d times, want exactly 1", verifyCalls)
	}
	if gotCreds.AccessToken != "access-1" || gotCreds.RefreshToken != "refresh-1" {
		t.Errorf("verify credentials = %+v", gotCreds)
	}
	if gotProfile == nil || gotProfile.ID != "00000000" || gotProfile.DisplayName != "ghaiklor" {
		t.Errorf("verify profile = %+v", gotProfile)
	}
}

func TestAuthenticate_MissingRefreshTokenTolerated(t *testing.T) {
	client := &mockClient{body: []byte(testutil.SampleProfileBody), status: 200}

	strategy := newTestStrategy(t, client, func(_ context.Context, creds Credentials, _ *Profile) (any, *Info, error) {
		if creds.RefreshToken != "" {
			t.Errorf("RefreshToken = %q, want empty", creds.RefreshToken)
		}
		return "user", nil, nil
	})

	outcome := strategy.Authenticate(context.Background(), &Request{
		Query: map[string]string{"access_token": "access-1"},
	})

	if !outcome.IsSuccess() {
		t.Fatalf("Kind = %v (err %v), want success", outcome.Kind, outcome.Err)
	}
}

func TestAuthenticate_VerifyRejects(t *testing.T) {
	client := &mockClient{body: []byte(testutil.SampleProfileBody), status: 200}
	rejection := &Info{Message: "user suspended"}

	strategy := newTestStrategy(t, client, func(context.Context, Credentials, *Profile) (any, *Info, error) {
		return nil, rejection, nil
	})

	outcome := strategy.Authenticate(context.Background(), &Request{
		Query: map[string]string{"access_token": "access-1"},
	})

	if !outcome.IsFailure() {
		t.Fatalf("Kind = %v, want failure", outcome.Kind)
	}
	if outcome.Info != rejection {
		t.Errorf("Info = %v, want the verify-supplied info", outcome.Info)
	}
	if outcome.User != nil {
		t.Errorf("User = %v, want nil", outcome.User)
	}
}

func TestAuthenticate_VerifyErrors(t *testing.T) {
	client := &mockClient{body: []byte(testutil.SampleProfileBody), status: 200}
	cause := errors.New("database unavailable")

	strategy := newTestStrategy(t, client, func(context.Context, Credentials, *Profile) (any, *Info, error) {
		return nil, nil, cause
	})

	outcome := strategy.Authenticate(context.Background(), &Request{
		Query: map[string]string{"access_token": "access-1"},
	})

	if !outcome.IsError() {
		t.Fatalf("Kind = %v, want error", outcome.Kind)
	}
	// Propagated as-is, no wrapping.
	if outcome.Err != cause {
		t.Errorf("Err = %v, want the verify error unchanged", outcome.Err)
	}
}

func TestAuthenticate_TransportError(t *testing.T) {
	client := &mockClient{err: errors.New("connection refused")}

	strategy := newTestStrategy(t, client, func(context.Context, Credentials, *Profile) (any, *Info, error) {
		t.Fatal("verify must not run after a fetch failure")
		return nil, nil, nil
	})

	outcome := strategy.Authenticate(context.Background(), &Request{
		Query: map[string]string{"access_token": "access-1"},
	})

	if !outcome.IsError() {
		t.Fatalf("Kind = %v, want error", outcome.Kind)
	}
	var fe *FetchError
	if !errors.As(outcome.Err, &fe) {
		t.Fatalf("Err = %T, want *FetchError", outcome.Err)
	}
	if got := fe.Error(); got != "Failed to fetch user profile: connection refused" {
		t.Errorf("Err message = %q", got)
	}
}

func TestAuthenticate_BadStatus(t *testing.T) {
	client := &mockClient{body: []byte(`{"error":"invalid token"}`), status: 401}

	strategy := newTestStrategy(t, client, func(context.Context, Credentials, *Profile) (any, *Info, error) {
		return "user", nil, nil
	})

	outcome := strategy.Authenticate(context.Background(), &Request{
		Query: map[string]string{"access_token": "expired"},
	})

	if !outcome.IsError() {
		t.Fatalf("Kind = %v, want error", outcome.Kind)
	}
	var fe *FetchError
	if !errors.As(outcome.Err, &fe) {
		t.Fatalf("Err = %T, want *FetchError", outcome.Err)
	}
	if fe.StatusCode != 401 {
		t.Errorf("StatusCode = %d, want 401", fe.StatusCode)
	}
}

func TestAuthenticate_MalformedProfile(t *testing.T) {
	client := &mockClient{body: []byte("not a JSON"), status: 200}

	strategy := newTestStrategy(t, client, func(context.Context, Credentials, *Profile) (any, *Info, error) {
		t.Fatal("verify must not run after a parse failure")
		return nil, nil, nil
	})

	outcome := strategy.Authenticate(context.Background(), &Request{
		Query: map[string]string{"access_token": "access-1"},
	})

	if !outcome.IsError() {
		t.Fatalf("Kind = %v, want error", outcome.Kind)
	}
	// Parse failures keep their native type so they never masquerade as
	// transport trouble.
	var syntaxErr *json.SyntaxError
	if !errors.As(outcome.Err, &syntaxErr) {
		t.Errorf("Err = %T, want *json.SyntaxError", outcome.Err)
	}
	if IsFetchError(outcome.Err) {
		t.Error("parse failure classified as fetch error")
	}
}

func TestAuthenticate_ProfileURLUsed(t *testing.T) {
	client := &mockClient{body: []byte(testutil.SampleProfileBody), status: 200}

	strategy, err := New(&Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		ProfileURL:   "https://example.com/custom-info",
		Client:       client,
	}, func(context.Context, Credentials, *Profile) (any, *Info, error) {
		return "user", nil, nil
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	strategy.Authenticate(context.Background(), &Request{
		Query: map[string]string{"access_token": "access-1"},
	})

	if client.lastURL != "https://example.com/custom-info" {
		t.Errorf("fetch URL = %q, want configured profile URL", client.lastURL)
	}
}

func TestAuthenticate_WithRequest(t *testing.T) {
	client := &mockClient{body: []byte(testutil.SampleProfileBody), status: 200}

	req := &Request{
		Body:  map[string]string{"access_token": "access-1"},
		Query: map[string]string{"device_id": "abc"},
	}

	var gotReq *Request
	strategy, err := NewWithRequest(&Config{
		ClientID:     "test-client-id",
		ClientSecret: "test-client-secret",
		Client:       client,
	}, func(_ context.Context, r *Request, _ Credentials, _ *Profile) (any, *Info, error) {
		gotReq = r
		return "user", nil, nil
	})
	if err != nil {
		t.Fatalf("NewWithRequest() error = %v", err)
	}

	outcome := strategy.Authenticate(context.Background(), req)

	if !outcome.IsSuccess() {
		t.Fatalf("Kind = %v (err %v), want success", outcome.Kind, outcome.Err)
	}
	if gotReq != req {
		t.Error("verify should receive the original request object")
	}
}

func TestOutcomeKind_String(t *testing.T) {
	tests := []struct {
		kind OutcomeKind
		want string
	}{
		{OutcomeSuccess, "success"},
		{OutcomeFailure, "failure"},
		{OutcomeError, "error"},
		{OutcomeKind(42), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("OutcomeKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestAuthenticate_ConcurrentAttempts(t *testing.T) {
	client := &mockClient{body: []byte(testutil.SampleProfileBody), status: 200}
	strategy := newTestStrategy(t, client, func(_ context.Context, creds Credentials, _ *Profile) (any, *Info, error) {
		return creds.AccessToken, nil, nil
	})

	done := make(chan Outcome, 2)
	for _, token := range []string{"token-a", "token-b"} {
		go func(token string) {
			done <- strategy.Authenticate(context.Background(), &Request{
				Query: map[string]string{"access_token": token},
			})
		}(token)
	}

	// Each attempt must see its own extracted token; nothing is shared
	// between concurrent attempts.
	seen := map[any]bool{}
	for i := 0; i < 2; i++ {
		outcome := <-done
		if !outcome.IsSuccess() {
			t.Fatalf("Kind = %v (err %v), want success", outcome.Kind, outcome.Err)
		}
		seen[outcome.User] = true
	}
	if !seen["token-a"] || !seen["token-b"] {
		t.Errorf("outcomes = %v, want both tokens observed", seen)
	}
}
