// Package naming holds the pure name transforms used by the pipeline:
// canonical column names (SCREAMING_SNAKE_CASE without parenthesized units)
// and short identifier-like names for collection keys.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// parenSpan matches a parenthesized span and any whitespace directly before
// it. Nested parentheses are not balanced: the span ends at the first ')'.
var parenSpan = regexp.MustCompile(`\s*\([^)]*\)`)

// Canonical converts a raw column header into its canonical form:
//
//  1. collapse whitespace runs into single spaces and trim the ends
//  2. drop every "(...)" span, wherever it appears
//  3. upper-case and replace the remaining spaces with underscores
//
// Canonical is idempotent: its output has no spaces and no complete
// parenthesized span, so a second pass changes nothing.
func Canonical(name string) string {
	s := strings.Join(strings.Fields(name), " ")
	s = parenSpan.ReplaceAllString(s, "")
	s = strings.TrimSpace(strings.ToUpper(s))
	return strings.ReplaceAll(s, " ", "_")
}

// Columns applies Canonical to every name and returns a new slice.
func Columns(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = Canonical(n)
	}
	return out
}

// Short converts a file stem or key segment into a lowercase ASCII
// identifier usable as a variable name in generated inspection code:
//  1. lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9_]; convert space/dash/dot to underscore; drop others
//  4. prefix "t_" when the result starts with a digit
//  5. fallback to "table" if empty
func Short(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "table"
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "t_" + name
	}
	return name
}
