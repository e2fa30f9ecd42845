package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// maxUsernameLength bounds usernames accepted by [ValidateUsername].
// RMD usernames are campus access IDs, far shorter than this.
const maxUsernameLength = 128

// ValidateUsername validates a username before it is placed in a remote URL
// path or a cache key.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No whitespace or control characters
//   - No path separators or traversal sequences (/, \, ..)
//   - Maximum length of 128 characters
func ValidateUsername(name string) error {
	if name == "" {
		return New(ErrCodeInvalidUsername, "username cannot be empty")
	}

	if len(name) > maxUsernameLength {
		return New(ErrCodeInvalidUsername, "username too long (max %d characters)", maxUsernameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidUsername, "username contains whitespace or control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidUsername, "username contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateAPIURL validates the RMD API base URL.
// It must be an absolute http or https URL with a host, and it must end with
// a slash because endpoint paths are appended to it verbatim.
func ValidateAPIURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidConfig, "api_url cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "api_url is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidConfig, "api_url must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidConfig, "api_url must include a host")
	}
	if !strings.HasSuffix(rawURL, "/") {
		return New(ErrCodeInvalidConfig, "api_url must end with a slash")
	}

	return nil
}
