package yandextoken

// Request carries the token-bearing parts of an inbound request. The strategy
// reads only the configured token fields from Body and Query; everything else
// about the original request stays with the caller (and is handed back intact
// by the request-aware verify variant).
type Request struct {
	// Body holds POST form or JSON body fields, if any.
	Body map[string]string

	// Query holds URL query parameters, if any.
	Query map[string]string
}

// Credentials are the per-request tokens extracted from a Request. They live
// for a single authentication attempt and are never persisted.
type Credentials struct {
	// AccessToken is the bearer token used to fetch the profile. Mandatory:
	// authentication fails without it.
	AccessToken string

	// RefreshToken is optional. Empty means the request carried none; nothing
	// downstream may assume it is set.
	RefreshToken string
}

// lookup returns the first present, non-empty value for field, checking Body
// before Query. Body wins so that POST-delivered secrets are preferred over
// URL-embedded ones, which end up in logs and caches far more often.
func (r *Request) lookup(field string) string {
	if r == nil {
		return ""
	}
	if v := r.Body[field]; v != "" {
		return v
	}
	return r.Query[field]
}

// ExtractCredentials selects the access and refresh tokens out of req using
// the given field names. Each token is looked up independently with the same
// body-over-query precedence. Absence is a normal outcome, reported as an
// empty string, never an error.
func ExtractCredentials(req *Request, accessTokenField, refreshTokenField string) Credentials {
	return Credentials{
		AccessToken:  req.lookup(accessTokenField),
		RefreshToken: req.lookup(refreshTokenField),
	}
}
