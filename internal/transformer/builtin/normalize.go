// Package builtin contains the stock table transformers.
package builtin

import (
	"strings"

	"wrangle/internal/table"
)

// Normalize trims surrounding whitespace and lower-cases every non-null
// value of a text column. Other kinds pass through untouched, as do rows
// shorter than the column list.
type Normalize struct{}

func (Normalize) Apply(in *table.Table) *table.Table {
	out := in.Clone()
	for c, col := range out.Columns {
		if col.Kind != table.KindText {
			continue
		}
		for _, row := range out.Rows {
			if c >= len(row) {
				continue
			}
			if s, ok := row[c].(string); ok {
				row[c] = strings.ToLower(strings.TrimSpace(s))
			}
		}
	}
	return out
}
