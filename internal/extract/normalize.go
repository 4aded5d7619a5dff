package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	extraNewlines = regexp.MustCompile(`\n{3,}`)
)

// Normalize cleans extracted text: valid UTF-8, LF line endings, no control
// characters other than newline and tab, no trailing spaces, and paragraph breaks
// collapsed to exactly one blank line.
func Normalize(text string) string {
	text = strings.ToValidUTF8(text, "\uFFFD")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	// Form feeds separate PDF pages.
	text = strings.ReplaceAll(text, "\f", "\n\n")
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r == '\uFEFF' || unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
	text = trailingSpace.ReplaceAllString(text, "\n")
	text = extraNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
