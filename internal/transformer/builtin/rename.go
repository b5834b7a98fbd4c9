package builtin

import (
	"wrangle/internal/naming"
	"wrangle/internal/table"
)

// Rename rewrites every column name with naming.Canonical. Two source
// columns may end up with the same name; both are kept.
type Rename struct{}

func (Rename) Apply(in *table.Table) *table.Table {
	out := in.Clone()
	for i := range out.Columns {
		out.Columns[i].Name = naming.Canonical(out.Columns[i].Name)
	}
	return out
}
