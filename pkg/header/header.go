// Package header normalizes column headers of uploaded tables so that names
// typed by people and names produced by spreadsheets compare equal.
package header

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// quotes are removed from headers wherever they appear.
var quotes = strings.NewReplacer(
	"\u201c", "",
	"\u201d", "",
	"\u2018", "",
	"\u2019", "",
	`"`, "",
	"'", "",
)

// maxPasses bounds the fixed-point loop in Sanitize. NFKC can expose a quote
// (e.g. from a fullwidth form) which is removed on the next pass.
const maxPasses = 4

// Sanitize applies NFKC normalization, removes quote characters and trims
// surrounding whitespace. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	for i := 0; i < maxPasses; i++ {
		next := strings.TrimSpace(quotes.Replace(norm.NFKC.String(s)))
		if next == s {
			break
		}
		s = next
	}
	return s
}

// SanitizeAll sanitizes a header row in place and returns it.
func SanitizeAll(headers []string) []string {
	for i, h := range headers {
		headers[i] = Sanitize(h)
	}
	return headers
}

// Fold returns the relaxed comparison form of s: sanitized and case folded.
func Fold(s string) string {
	return cases.Fold().String(Sanitize(s))
}

// Resolve returns the first header whose folded form equals the folded
// nominal name.
func Resolve(headers []string, nominal string) (string, bool) {
	want := Fold(nominal)
	for _, h := range headers {
		if Fold(h) == want {
			return h, true
		}
	}
	return "", false
}

// Unique renames repeated headers by appending .1, .2 and so on, the way
// spreadsheet exports disambiguate them. Blank headers become "column_<n>".
func Unique(headers []string) []string {
	seen := make(map[string]bool, len(headers))
	out := make([]string, len(headers))
	for i, h := range headers {
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		name := h
		for n := 1; seen[name]; n++ {
			name = fmt.Sprintf("%s.%d", h, n)
		}
		seen[name] = true
		out[i] = name
	}
	return out
}
