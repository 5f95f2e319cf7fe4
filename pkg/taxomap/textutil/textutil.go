package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// CleanCell trims a spreadsheet cell, drops a leading byte order mark and
// composes the text to NFC so decomposed accents compare equal.
func CleanCell(v string) string {
	v = strings.TrimPrefix(v, "\ufeff")
	v = norm.NFC.String(v)
	return strings.TrimSpace(v)
}

// Fold lower-cases s using Unicode case rules. A Caser is not safe for
// concurrent use, so one is built per call.
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// FoldTrim is Fold applied after trimming surrounding whitespace.
func FoldTrim(s string) string {
	return Fold(strings.TrimSpace(s))
}
