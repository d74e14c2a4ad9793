package yandextoken

import (
	"encoding/json"
	"errors"
	"fmt"
)

// fetchFailureMessage is the fixed message carried by every FetchError,
// regardless of the underlying transport condition.
const fetchFailureMessage = "Failed to fetch user profile"

// errNilVerify guards construction: a strategy without a verify function can
// never finalize an attempt.
var errNilVerify = errors.New("verify function is required")

// ErrIncompleteProfile is returned when the provider delivers syntactically
// valid JSON that lacks the subject identifier. A profile without an id is
// useless to any verification policy, so normalization refuses to produce it.
var ErrIncompleteProfile = errors.New("profile document is missing the id field")

// FetchError reports a failed call to the profile endpoint: either the
// transport errored before a response arrived, or the provider answered with
// a non-2xx status. It is deliberately distinct from the JSON parse errors
// surfaced by ParseProfile so callers can tell "provider unreachable or
// rejected the token" apart from "provider returned garbage" by type.
type FetchError struct {
	// StatusCode is the HTTP status of the provider response, or zero when
	// the transport failed before any response was received.
	StatusCode int

	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", fetchFailureMessage, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", fetchFailureMessage, e.StatusCode)
	default:
		return fetchFailureMessage
	}
}

// Unwrap returns the underlying transport error, if any
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err classifies as a profile fetch failure
// (transport error or non-2xx provider response).
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// IsParseError reports whether err came from decoding the profile body as
// JSON. Parse errors propagate from encoding/json unwrapped, so the native
// error kinds are the contract here.
func IsParseError(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}
