// Package util provides small shared helpers used across the yandex-token
// library. These utilities keep diagnostic logging bounded and consistent
// without pulling domain logic into leaf packages.
package util

// SafeTruncate safely truncates a string to maxLen characters without
// panicking. Returns the original string if it's shorter than maxLen,
// otherwise returns the first maxLen characters. This keeps log lines bounded
// when echoing untrusted data such as a malformed provider response body,
// where only a prefix should be shown.
//
// If maxLen is negative, it's treated as 0 and returns an empty string.
//
// Example:
//
//	SafeTruncate("not a JSON response from upstream", 10) // Returns: "not a JSON"
//	SafeTruncate("short", 10)                             // Returns: "short"
//	SafeTruncate("test", -1)                              // Returns: ""
func SafeTruncate(s string, maxLen int) string {
	if maxLen < 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
