// Package links finds http(s) URLs in free text.
package links

import "regexp"

// urlPattern stops at a closing parenthesis or any Unicode space. RE2's \s
// is ASCII only, so NBSP, U+202F (common in chat exports), line separators
// and \v are listed explicitly.
var urlPattern = regexp.MustCompile(`(?i)\bhttps?://[^\s\p{Z}\x{0B}\x{85}\x{FEFF})]+`)

// Extract returns the distinct URLs of text in first-seen order.
// The result is never nil.
func Extract(text string) []string {
	matches := urlPattern.FindAllString(text, -1)

	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
