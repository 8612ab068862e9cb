package util

import (
	"regexp"
	"strings"
)

// SanitizeText removes NUL bytes and non-printing control characters that PDF
// extractors occasionally emit, keeping common whitespace.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, "\x00", "")

	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

var (
	referencesHeading = regexp.MustCompile(`\n\s*(?:References|REFERENCES|Bibliography|BIBLIOGRAPHY)\s*\n`)
	circledDigits     = regexp.MustCompile("[①②③④⑤⑥⑦⑧⑨⑩]")
	mathLeftovers     = regexp.MustCompile("[¿¡¬√]")
	symbolRuns        = regexp.MustCompile(`[^\w\s.,;:()\-/%]+`)
	whitespaceRuns    = regexp.MustCompile(`\s+`)
)

// StripReferences cuts the text at the first References/Bibliography heading
// on its own line and drops everything after it. Text without such a heading
// is returned unchanged.
func StripReferences(s string) string {
	if loc := referencesHeading.FindStringIndex(s); loc != nil {
		return strings.TrimSpace(s[:loc[0]])
	}
	return s
}

// RemoveSymbolNoise strips circled digits, stray math glyphs and runs of
// non-alphanumeric symbols left behind by PDF extraction, then collapses all
// whitespace to single spaces.
func RemoveSymbolNoise(s string) string {
	s = circledDigits.ReplaceAllString(s, "")
	s = mathLeftovers.ReplaceAllString(s, "")
	s = symbolRuns.ReplaceAllString(s, " ")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CollapseWhitespace normalizes any whitespace run to a single space.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRuns.ReplaceAllString(s, " "))
}
