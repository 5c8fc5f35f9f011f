package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// boardNameRegex matches names usable as file names and redis key segments.
var boardNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateBoardName checks a board name used as a store key or file name.
//
// Rules:
//   - 1 to 128 characters
//   - letters, digits, '.', '_' and '-' only, not starting with punctuation
//   - no ".." sequence
func ValidateBoardName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "board name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidName, "board name too long (max 128 characters)")
	}
	if strings.Contains(name, "..") || !boardNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid board name: %q", name)
	}
	return nil
}

// ValidateResourceID checks a resource identifier before it is resolved.
// Identifiers are either http(s) URLs or URNs.
func ValidateResourceID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "resource id cannot be empty")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "resource id contains whitespace or control characters")
		}
	}
	if strings.HasPrefix(id, "urn:") {
		if strings.Count(id, ":") < 2 {
			return New(ErrCodeInvalidInput, "malformed URN: %q", id)
		}
		return nil
	}
	return ValidateURL(id)
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must have a host")
	}
	return nil
}
