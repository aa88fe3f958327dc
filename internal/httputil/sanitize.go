package httputil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	// loginPattern matches Twitch login names.
	loginPattern = regexp.MustCompile(`^[a-zA-Z0-9_]{1,25}$`)

	// numericIDPattern matches purely numeric IDs.
	numericIDPattern = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateURL checks that a URL is well-formed and uses HTTPS.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("only HTTPS URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateLogin checks that a channel login name contains only characters
// the platform allows, so it can be placed in a query string verbatim.
func ValidateLogin(login string) error {
	if login == "" {
		return fmt.Errorf("channel name cannot be empty")
	}
	if !loginPattern.MatchString(login) {
		return fmt.Errorf("invalid channel name %q", login)
	}
	return nil
}

// ValidateNumericID checks that an ID is purely numeric.
func ValidateNumericID(id string) error {
	if id == "" {
		return fmt.Errorf("numeric ID cannot be empty")
	}
	if !numericIDPattern.MatchString(id) {
		return fmt.Errorf("expected numeric ID, got %q", id)
	}
	return nil
}

// BuildURL joins base with escaped path segments and appends the encoded query.
func BuildURL(base string, query url.Values, pathSegments ...string) string {
	u := strings.TrimRight(base, "/")
	for _, seg := range pathSegments {
		u += "/" + url.PathEscape(seg)
	}
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
