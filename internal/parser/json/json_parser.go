// Package json decodes JSON documents into a typed table.
//
// Three layouts are understood:
//
//   - records: a top-level array of objects, one object per row
//     [{"id":1,"name":"a"},{"id":2,"name":"b"}]
//   - columns: a single object mapping column names to arrays or to
//     index-keyed objects
//     {"id":[1,2],"name":["a","b"]}
//     {"id":{"0":1,"1":2},"name":{"0":"a","1":"b"}}
//   - lines: a stream of objects (NDJSON), one object per row
//
// Column order follows first appearance. Keys are kept in document order,
// so the decoder walks tokens instead of decoding into Go maps.
package json

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"wrangle/internal/config"
	"wrangle/internal/table"
)

// Orientations accepted by Options.Orient.
const (
	OrientAuto    = ""
	OrientRecords = "records"
	OrientColumns = "columns"
	OrientLines   = "lines"
)

// Options configures the JSON parser.
type Options struct {
	// Orient forces one layout. Empty detects it from the document shape.
	Orient string
}

// FromConfigOptions constructs JSON Options from a parser.json option bag.
func FromConfigOptions(o config.Options) (Options, error) {
	opt := Options{Orient: o.String("orient", OrientAuto)}
	switch opt.Orient {
	case OrientAuto, OrientRecords, OrientColumns, OrientLines:
		return opt, nil
	default:
		return Options{}, fmt.Errorf("unknown orient %q", opt.Orient)
	}
}

// Parser decodes JSON input according to Options. It is safe for
// concurrent use.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// ErrEmpty is returned for input without any JSON value.
var ErrEmpty = errors.New("no JSON value in input")

// Decode reads every top-level value of r and assembles one table.
func (p *Parser) Decode(r io.Reader) (*table.Table, error) {
	dec := json.NewDecoder(r)
	// UseNumber so integers and reals can be told apart.
	dec.UseNumber()

	var docs []any
	for {
		v, err := readValue(dec)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("json parser: %w", err)
		}
		docs = append(docs, v)
	}
	if len(docs) == 0 {
		return nil, ErrEmpty
	}

	orient := p.opt.Orient
	if orient == OrientAuto {
		orient = detect(docs)
	}

	var b builder
	switch orient {
	case OrientRecords:
		arr, ok := docs[0].([]any)
		if len(docs) != 1 || !ok {
			return nil, errors.New("json parser: records layout needs a single top-level array")
		}
		for i, elem := range arr {
			obj, ok := elem.(*object)
			if !ok {
				return nil, fmt.Errorf("json parser: element %d in array is not an object", i)
			}
			b.addRecord(obj)
		}
	case OrientColumns:
		obj, ok := docs[0].(*object)
		if len(docs) != 1 || !ok {
			return nil, errors.New("json parser: columns layout needs a single top-level object")
		}
		if err := b.addColumns(obj); err != nil {
			return nil, err
		}
	case OrientLines:
		for i, d := range docs {
			obj, ok := d.(*object)
			if !ok {
				return nil, fmt.Errorf("json parser: value %d is %s, want object", i, describe(d))
			}
			b.addRecord(obj)
		}
	default:
		return nil, fmt.Errorf("json parser: unknown orient %q", orient)
	}
	return b.build(), nil
}

// detect picks the layout from the shape of the top-level values.
func detect(docs []any) string {
	if len(docs) == 1 {
		switch v := docs[0].(type) {
		case []any:
			return OrientRecords
		case *object:
			if v.allNested() {
				return OrientColumns
			}
		}
	}
	return OrientLines
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case *object:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	default:
		return "number"
	}
}

// builder accumulates rows addressed by label and columns in first-seen order.
type builder struct {
	cols   []string
	colIdx map[string]int
	rows   [][]any
	rowIdx map[string]int
}

func (b *builder) column(name string) int {
	if b.colIdx == nil {
		b.colIdx = map[string]int{}
	}
	i, ok := b.colIdx[name]
	if !ok {
		i = len(b.cols)
		b.cols = append(b.cols, name)
		b.colIdx[name] = i
	}
	return i
}

func (b *builder) set(row, col int, v any) {
	r := b.rows[row]
	for len(r) <= col {
		r = append(r, nil)
	}
	r[col] = v
	b.rows[row] = r
}

func (b *builder) addRecord(obj *object) {
	b.rows = append(b.rows, nil)
	row := len(b.rows) - 1
	for _, k := range obj.keys {
		b.set(row, b.column(k), obj.vals[k])
	}
}

// label returns the row for an index label, creating it on first use.
func (b *builder) label(l string) int {
	if b.rowIdx == nil {
		b.rowIdx = map[string]int{}
	}
	i, ok := b.rowIdx[l]
	if !ok {
		b.rows = append(b.rows, nil)
		i = len(b.rows) - 1
		b.rowIdx[l] = i
	}
	return i
}

func (b *builder) addColumns(obj *object) error {
	for _, name := range obj.keys {
		c := b.column(name)
		switch v := obj.vals[name].(type) {
		case []any:
			for i, cell := range v {
				b.set(b.label(strconv.Itoa(i)), c, cell)
			}
		case *object:
			for _, l := range v.keys {
				b.set(b.label(l), c, v.vals[l])
			}
		default:
			return fmt.Errorf("json parser: column %q is %s, want array or object", name, describe(v))
		}
	}
	return nil
}

// build types every column and converts its cells.
func (b *builder) build() *table.Table {
	t := &table.Table{
		Columns: make([]table.Column, len(b.cols)),
		Rows:    make([][]any, len(b.rows)),
	}
	for r, row := range b.rows {
		out := make([]any, len(b.cols))
		copy(out, row)
		t.Rows[r] = out
	}
	for c, name := range b.cols {
		kind := unify(t.Rows, c)
		t.Columns[c] = table.Column{Name: name, Kind: kind}
		for _, row := range t.Rows {
			row[c] = cell(row[c], kind)
		}
	}
	return t
}

// unify returns the narrowest kind that holds every non-null value of
// column c. Integers mixed with reals widen to real; any other mix is text.
func unify(rows [][]any, c int) table.Kind {
	var seen bool
	kind := table.KindText
	for _, row := range rows {
		v := row[c]
		if v == nil {
			continue
		}
		k := kindOf(v)
		if !seen {
			kind, seen = k, true
			continue
		}
		switch {
		case k == kind:
		case (k == table.KindInteger && kind == table.KindReal) || (k == table.KindReal && kind == table.KindInteger):
			kind = table.KindReal
		default:
			return table.KindText
		}
	}
	return kind
}

func kindOf(v any) table.Kind {
	switch x := v.(type) {
	case bool:
		return table.KindBoolean
	case json.Number:
		if _, err := x.Int64(); err == nil {
			return table.KindInteger
		}
		if _, err := x.Float64(); err == nil {
			return table.KindReal
		}
	}
	return table.KindText
}

func cell(v any, k table.Kind) any {
	if v == nil {
		return nil
	}
	switch k {
	case table.KindInteger:
		n, _ := v.(json.Number).Int64()
		return n
	case table.KindReal:
		f, _ := v.(json.Number).Float64()
		return f
	case table.KindBoolean:
		return v.(bool)
	}
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		var buf bytes.Buffer
		render(&buf, x)
		return buf.String()
	}
}
