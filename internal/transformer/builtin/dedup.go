package builtin

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"

	"wrangle/internal/table"
)

// DeDup drops every row that exactly equals an earlier row and keeps the
// first occurrence in its original position. Cells compare by kind and
// value; null equals null.
//
// Keys optionally restricts the comparison to the named columns. Empty
// means all columns.
//
// Rows are bucketed by an xxh3 fingerprint and confirmed with a full
// comparison, so a hash collision never drops a distinct row.
type DeDup struct {
	Keys []string
}

func (d DeDup) Apply(in *table.Table) *table.Table {
	cols := d.columns(in)
	out := &table.Table{
		Columns: append([]table.Column(nil), in.Columns...),
		Rows:    make([][]any, 0, len(in.Rows)),
	}

	seen := make(map[uint64][]int, len(in.Rows))
	var buf []byte
	for _, row := range in.Rows {
		buf = appendKey(buf[:0], row, cols)
		h := xxh3.Hash(buf)

		dup := false
		for _, j := range seen[h] {
			if rowsEqual(out.Rows[j], row, cols) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[h] = append(seen[h], len(out.Rows))
		out.Rows = append(out.Rows, append([]any(nil), row...))
	}
	return out
}

// columns resolves Keys to positions. Unknown names are ignored; if none
// resolve, every column is compared.
func (d DeDup) columns(t *table.Table) []int {
	var cols []int
	for _, k := range d.Keys {
		if i := t.Index(k); i >= 0 {
			cols = append(cols, i)
		}
	}
	if len(cols) == 0 {
		cols = make([]int, len(t.Columns))
		for i := range cols {
			cols[i] = i
		}
	}
	return cols
}

// Cell tags keep values of different kinds apart in the fingerprint.
const (
	tagNull byte = iota
	tagText
	tagInt
	tagReal
	tagFalse
	tagTrue
	tagOther
)

func appendKey(b []byte, row []any, cols []int) []byte {
	for _, c := range cols {
		var v any
		if c < len(row) {
			v = row[c]
		}
		switch x := v.(type) {
		case nil:
			b = append(b, tagNull)
		case string:
			b = append(b, tagText)
			b = binary.AppendUvarint(b, uint64(len(x)))
			b = append(b, x...)
		case int64:
			b = append(b, tagInt)
			b = binary.LittleEndian.AppendUint64(b, uint64(x))
		case float64:
			b = append(b, tagReal)
			b = binary.LittleEndian.AppendUint64(b, floatBits(x))
		case bool:
			if x {
				b = append(b, tagTrue)
			} else {
				b = append(b, tagFalse)
			}
		default:
			b = append(b, tagOther)
		}
	}
	return b
}

// floatBits folds -0 onto 0 and every NaN onto one pattern, matching cellEqual.
func floatBits(f float64) uint64 {
	switch {
	case f == 0:
		return 0
	case math.IsNaN(f):
		return math.Float64bits(math.NaN())
	default:
		return math.Float64bits(f)
	}
}

func rowsEqual(a, b []any, cols []int) bool {
	for _, c := range cols {
		var x, y any
		if c < len(a) {
			x = a[c]
		}
		if c < len(b) {
			y = b[c]
		}
		if !cellEqual(x, y) {
			return false
		}
	}
	return true
}

func cellEqual(x, y any) bool {
	if fx, ok := x.(float64); ok {
		fy, ok := y.(float64)
		return ok && (fx == fy || (math.IsNaN(fx) && math.IsNaN(fy)))
	}
	return x == y
}
