package validation

import "regexp"

// Username rules:
// - Lowercase letters, digits, and [_.-].
// - Start and end with [a-z0-9].
// - Length 1..40.
// - Excludes whitespace, uppercase and path-relevant chars ("/", ":") explicitly,
//   since usernames may appear in URLs.
//
// Examples valid: john, john.doe, j, dev_42, a-b.c
// Examples invalid: "", ".john", "john.", "John", "jo hn", "a/b", 41+ chars.
var usernameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_\.-]{0,38}[a-z0-9])?$`)

// ValidUsername returns true if the provided username matches the allowed pattern.
func ValidUsername(name string) bool {
	return usernameRe.MatchString(name)
}
