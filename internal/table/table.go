// Package table defines the in-memory tabular model shared by the parsers,
// transformers, and sinks.
//
// A Table is an ordered list of typed columns plus row-major cell values.
// Cells hold one of nil, string, int64, float64, or bool. Row identity is
// positional: the row index is the row's offset in Rows, so dropping rows
// implicitly renumbers the remainder from zero.
//
// Tables are passed around as values that are never mutated after they are
// handed to another stage. Transformers build a new Table (see Clone) rather
// than editing their input.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the inferred or declared type of a column.
type Kind int

const (
	// KindText is free-form text; the only kind touched by value normalization.
	KindText Kind = iota
	// KindInteger holds int64 values.
	KindInteger
	// KindReal holds float64 values.
	KindReal
	// KindBoolean holds bool values.
	KindBoolean
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBoolean:
		return "boolean"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind maps a user-facing type name onto a Kind. It accepts the names
// used in pipeline configs ("int", "float", "bool", "string") as well as the
// Kind.String forms.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string", "str", "object":
		return KindText, nil
	case "integer", "int", "int64", "bigint":
		return KindInteger, nil
	case "real", "float", "float64", "double", "number":
		return KindReal, nil
	case "boolean", "bool":
		return KindBoolean, nil
	default:
		return KindText, fmt.Errorf("unknown column type %q", s)
	}
}

// Column describes a single column.
type Column struct {
	Name string
	Kind Kind
}

// Table is an ordered, typed, row-major table.
type Table struct {
	Columns []Column
	Rows    [][]any
}

// New returns an empty table with the given columns.
func New(cols ...Column) *Table {
	return &Table{Columns: append([]Column(nil), cols...)}
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the first column named name, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Clone returns a deep copy of the column list and the row slices. Cell
// values are immutable scalars, so copying the row slices is sufficient.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]Column(nil), t.Columns...),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]any(nil), r...)
	}
	return out
}

// Column returns the values of column i in row order.
func (t *Table) Column(i int) []any {
	out := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			out[r] = row[i]
		}
	}
	return out
}

// NonNull counts the non-nil cells of column i.
func (t *Table) NonNull(i int) int {
	n := 0
	for _, row := range t.Rows {
		if i < len(row) && row[i] != nil {
			n++
		}
	}
	return n
}

// Format renders a cell value as text. nil renders as the empty string.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
