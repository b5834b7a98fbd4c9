package csv

import (
	"strconv"
	"strings"

	"wrangle/internal/table"
)

// inferKind guesses a column kind from its non-null raw values. Every value
// must satisfy a narrower kind for it to win; anything else stays text, so
// mixed columns never fail. A column without values is text.
func inferKind(values []*string) table.Kind {
	nonEmpty := make([]string, 0, len(values))
	for _, v := range values {
		if v != nil {
			nonEmpty = append(nonEmpty, *v)
		}
	}
	if len(nonEmpty) == 0 {
		return table.KindText
	}
	if allMatch(nonEmpty, isInt) {
		return table.KindInteger
	}
	// Ints are valid floats, so a mix of the two is real.
	if allMatch(nonEmpty, isFloat) {
		return table.KindReal
	}
	if allMatch(nonEmpty, isBool) {
		return table.KindBoolean
	}
	return table.KindText
}

// allMatch reports whether every value satisfies fn.
func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

// trimNumeric strips the surrounding ASCII spaces that numeric fields may
// carry (" 42"). Text fields keep theirs until normalization.
func trimNumeric(s string) string { return strings.TrimSpace(s) }

// isInt requires a signed base-10 integer that fits in int64.
func isInt(s string) bool {
	_, err := strconv.ParseInt(trimNumeric(s), 10, 64)
	return err == nil
}

// isFloat accepts decimal or scientific notation, integers included.
func isFloat(s string) bool {
	_, err := strconv.ParseFloat(trimNumeric(s), 64)
	return err == nil
}

// isBool accepts the textual booleans True/False in any case. 1/0 are
// integers and yes/no stay text.
func isBool(s string) bool {
	_, ok := parseBool(s)
	return ok
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}
