package app

import (
	"regexp"
	"strings"
)

// The model is instructed, not constrained, to omit document references;
// these rewrites are the second line of defense. They run in a fixed
// order and the whole pass is idempotent.
var cleanupRewrites = []struct {
	re          *regexp.Regexp
	replacement string
}{
	// "page 3", "page 3-5", "pages 2, 4 and 7", "(page 12)"
	{regexp.MustCompile(`(?i)\(?\b(?:on\s+|see\s+)?pages?\s+\d+(?:\s*-\s*\d+)?(?:\s*(?:,|and|&)\s*\d+)*\)?`), " "},
	// "document 2", "section 4", "section 4.1.2"
	{regexp.MustCompile(`(?i)\(?\b(?:document|section)\s+\d+(?:\.\d+)*\b\)?`), " "},
	// raw asterisk bullets become the widget's bullet character
	{regexp.MustCompile(`(^|\s)\*\s+`), "${1}• "},
	// collapse runs of whitespace, including newlines
	{regexp.MustCompile(`\s+`), " "},
}

// CleanAnswer strips document-reference artifacts from raw model output.
// CleanAnswer(CleanAnswer(x)) == CleanAnswer(x) for any x.
func CleanAnswer(raw string) string {
	out := raw
	for _, rw := range cleanupRewrites {
		out = rw.re.ReplaceAllString(out, rw.replacement)
	}
	return strings.TrimSpace(out)
}
