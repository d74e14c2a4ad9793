package yandextoken

import (
	"encoding/json"
	"strings"
)

// ProviderName identifies Yandex as the issuing identity provider on every
// normalized profile.
const ProviderName = "yandex"

// Name holds the split parts of the profile's real name.
type Name struct {
	FamilyName string
	GivenName  string
}

// Email is a single email address entry on a profile.
type Email struct {
	Value string
}

// Photo is a single photo entry on a profile. Yandex does not supply photos
// through the info endpoint; the field exists so the canonical shape matches
// providers that do.
type Photo struct {
	Value string
}

// Profile is the canonical, provider-normalized user record handed to the
// verification function. ID and Provider are always set when normalization
// succeeds; a malformed document fails normalization rather than producing a
// partial profile.
type Profile struct {
	// Provider is always ProviderName.
	Provider string

	// ID is the provider-issued unique subject identifier.
	ID string

	// DisplayName is the user's public login name. May be empty.
	DisplayName string

	// Name is the real name split on the first space. Either part may be
	// empty when the provider omits the field.
	Name Name

	// Emails holds a single entry taken from the provider's default email
	// field; the value is empty when the provider omits it.
	Emails []Email

	// Photos is always empty for this provider.
	Photos []Photo

	// RawBody is the original response body, retained for diagnostics.
	RawBody []byte

	// RawJSON is the parsed response document, retained for diagnostics and
	// for integrators that need provider fields outside the canonical shape.
	RawJSON map[string]any
}

// yandexProfileDocument mirrors the subset of the login.yandex.ru/info
// response the canonical profile is built from.
type yandexProfileDocument struct {
	ID           string `json:"id"`
	DisplayName  string `json:"display_name"`
	RealName     string `json:"real_name"`
	DefaultEmail string `json:"default_email"`
}

// ParseProfile maps a raw provider response body into a canonical Profile.
//
// Malformed JSON propagates as the native encoding/json error kind, never
// wrapped, so callers can distinguish it from transport failures by type.
// A well-formed document without an id yields ErrIncompleteProfile.
func ParseProfile(body []byte) (*Profile, error) {
	var doc yandexProfileDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	if doc.ID == "" {
		return nil, ErrIncompleteProfile
	}

	// The document decoded once already, so this cannot fail; the map form is
	// retained for diagnostics.
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)

	familyName, givenName, _ := strings.Cut(doc.RealName, " ")

	return &Profile{
		Provider:    ProviderName,
		ID:          doc.ID,
		DisplayName: doc.DisplayName,
		Name: Name{
			FamilyName: familyName,
			GivenName:  givenName,
		},
		Emails:  []Email{{Value: doc.DefaultEmail}},
		Photos:  []Photo{},
		RawBody: body,
		RawJSON: raw,
	}, nil
}
