package intent

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize lowercases and trims a transcript. It is idempotent.
func Normalize(text string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return strings.TrimSpace(cases.Lower(language.Und).String(text))
}
