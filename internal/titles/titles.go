// Package titles resolves human-readable page titles for URLs.
package titles

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// Resolver returns the title of a page, or "" when it has none.
type Resolver interface {
	Resolve(ctx context.Context, rawURL string) (string, error)
}

// ErrEmptyURL is returned for blank input.
var ErrEmptyURL = errors.New("empty url")

var hasScheme = regexp.MustCompile(`^[a-zA-Z]+://`)

// EnsureURL trims raw and prefixes https:// when it has no scheme.
func EnsureURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	if !hasScheme.MatchString(raw) {
		return "https://" + raw, nil
	}
	return raw, nil
}
