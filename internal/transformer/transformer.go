// Package transformer composes table-to-table cleaning steps.
package transformer

import (
	"wrangle/internal/table"
	"wrangle/internal/transformer/builtin"
)

// Transformer returns a transformed copy of its input. Implementations must
// not mutate the table they are given.
type Transformer interface {
	Apply(*table.Table) *table.Table
}

// Chain is an ordered list of transformers.
type Chain []Transformer

func (c Chain) Apply(in *table.Table) *table.Table {
	out := in
	for _, t := range c {
		out = t.Apply(out)
	}
	return out
}

// Clean returns the standard cleaning chain: text values are trimmed and
// lower-cased, exact duplicate rows are dropped, then column names are
// canonicalized. Names are rewritten last so that the other steps see the
// columns as decoded.
func Clean() Chain {
	return Chain{builtin.Normalize{}, builtin.DeDup{}, builtin.Rename{}}
}
