package synthesizer

import (
	"regexp"
	"strings"
)

var (
	boldPattern    = regexp.MustCompile(`\*\*([^*]*)\*\*`)
	italicPattern  = regexp.MustCompile(`\*([^*]*)\*`)
	codePattern    = regexp.MustCompile("`+([^`]*)`+")
	headingPattern = regexp.MustCompile(`(?m)^#{1,6}\s*`)
)

// StripMarkdown removes the formatting the model tends to emit even
// when told not to. WhatsApp renders these literally, so they have to
// go before delivery.
func StripMarkdown(s string) string {
	s = boldPattern.ReplaceAllString(s, "$1")
	s = italicPattern.ReplaceAllString(s, "$1")
	s = codePattern.ReplaceAllString(s, "$1")
	s = headingPattern.ReplaceAllString(s, "")
	return s
}

// ClampLines keeps at most max non-empty lines, preserving order.
func ClampLines(s string, max int) string {
	if max <= 0 {
		return s
	}
	var kept []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
		if len(kept) == max {
			break
		}
	}
	return strings.Join(kept, "\n")
}

// CountWords counts whitespace-separated tokens.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
