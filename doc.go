// Package yandextoken implements a bearer-token authentication strategy for
// the Yandex identity provider. It is the server-side counterpart of a mobile
// or SPA flow where the client already holds an access token: the strategy
// extracts the token from the request, fetches the user's profile from
// login.yandex.ru, normalizes it into a canonical shape, and delegates the
// trust decision to an application-supplied verify function.
//
// The strategy issues no tokens and stores nothing; it only validates token
// presence and uses the pre-obtained token to fetch a profile.
//
// # Token Extraction
//
// Tokens are looked up in the request body first, then the query string,
// under configurable field names (default "access_token"/"refresh_token").
// Body wins so POST-delivered secrets are preferred over URL-embedded ones.
// The refresh token is optional throughout; only the access token is
// mandatory.
//
// # Outcomes
//
// Authenticate returns exactly one tagged Outcome per attempt:
//   - OutcomeSuccess: the verify function accepted the user
//   - OutcomeFailure: no access token in the request, or the verify function
//     declined the user (expected, client-recoverable conditions)
//   - OutcomeError: the provider was unreachable, returned a non-2xx status
//     or a malformed document, or the verify function errored
//
// Transport failures surface as *FetchError; malformed profile documents
// surface as native encoding/json errors, so the two are distinguishable by
// type, not message text.
//
// # Example Usage
//
//	strategy, err := yandextoken.New(&yandextoken.Config{
//		ClientID:     os.Getenv("YANDEX_CLIENT_ID"),
//		ClientSecret: os.Getenv("YANDEX_CLIENT_SECRET"),
//	}, func(ctx context.Context, creds yandextoken.Credentials, profile *yandextoken.Profile) (any, *yandextoken.Info, error) {
//		user, err := users.FindByYandexID(ctx, profile.ID)
//		if err != nil {
//			return nil, nil, err
//		}
//		if user == nil {
//			return nil, &yandextoken.Info{Message: "unknown user"}, nil
//		}
//		return user, nil, nil
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome := strategy.Authenticate(ctx, &yandextoken.Request{
//		Query: map[string]string{"access_token": token},
//	})
//	switch outcome.Kind {
//	case yandextoken.OutcomeSuccess:
//		// outcome.User is authenticated
//	case yandextoken.OutcomeFailure:
//		// reject with outcome.Info
//	case yandextoken.OutcomeError:
//		// log outcome.Err, respond 502/500
//	}
//
// # Concurrency
//
// A Strategy is immutable after construction. Concurrent Authenticate calls
// share only the read-only configuration; each attempt closes over its own
// credentials and in-flight profile. No cancellation or timeout is imposed by
// the strategy beyond the configurable per-call deadline of the default
// OAuth2 client; retries, if any, belong to the caller or the HTTP transport.
package yandextoken
