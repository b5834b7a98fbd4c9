// Package csv decodes delimited text into a typed table.
//
// The first record is the header. Column types come from an optional
// caller-supplied mapping (Options.Types); every other column is inferred
// from its values. Inference never fails: a column whose values disagree on
// a type simply stays text.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"wrangle/internal/config"
	"wrangle/internal/table"
)

// Options configures the CSV parser. All fields are optional.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// Types maps raw header names to declared column kinds. Declared columns
	// are converted strictly; a value that does not convert fails the file.
	Types map[string]table.Kind
}

// FromConfigOptions builds Options from a parser.csv option bag:
// "comma" (string) and "dtypes" (object of column -> type name).
func FromConfigOptions(o config.Options) (Options, error) {
	opt := Options{Comma: o.Rune("comma", ',')}
	dtypes := o.StringMap("dtypes")
	if len(dtypes) == 0 {
		return opt, nil
	}
	opt.Types = make(map[string]table.Kind, len(dtypes))
	for col, name := range dtypes {
		k, err := table.ParseKind(name)
		if err != nil {
			return Options{}, fmt.Errorf("dtypes[%q]: %w", col, err)
		}
		opt.Types[col] = k
	}
	return opt, nil
}

// Parser decodes CSV input according to Options. It holds no per-input
// state and is safe for concurrent use.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// ErrNoColumns is returned for an input without a header row.
var ErrNoColumns = errors.New("no columns to parse from file")

// Decode reads the whole input and returns the typed table. Rows shorter
// than the header are padded with nulls; rows wider than the header and
// quoting errors fail the decode.
func (p *Parser) Decode(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoColumns
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	names := uniqueHeaders(StripHeaderBOM(header))
	width := len(names)

	var raw [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(rec) > width {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected %d fields, saw %d", line, width, len(rec))
		}
		raw = append(raw, rec)
	}

	t := &table.Table{
		Columns: make([]table.Column, width),
		Rows:    make([][]any, len(raw)),
	}
	for i := range t.Rows {
		t.Rows[i] = make([]any, width)
	}

	for c, name := range names {
		values := make([]*string, len(raw))
		for r, rec := range raw {
			if c < len(rec) && !isNA(rec[c]) {
				v := rec[c]
				values[r] = &v
			}
		}

		kind, declared := p.opt.Types[name]
		if !declared {
			kind = inferKind(values)
		}
		t.Columns[c] = table.Column{Name: name, Kind: kind}

		for r, v := range values {
			if v == nil {
				continue
			}
			cell, err := convert(*v, kind)
			if err != nil {
				if declared {
					return nil, fmt.Errorf("column %q row %d: %w", name, r, err)
				}
				// Inference guarantees convertibility; fall back to text anyway.
				cell = *v
			}
			t.Rows[r][c] = cell
		}
	}
	return t, nil
}

// convert turns a raw field into a cell of the given kind.
func convert(s string, k table.Kind) (any, error) {
	switch k {
	case table.KindInteger:
		n, err := strconv.ParseInt(trimNumeric(s), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to integer", s)
		}
		return n, nil
	case table.KindReal:
		f, err := strconv.ParseFloat(trimNumeric(s), 64)
		if err != nil {
			return nil, fmt.Errorf("cannot convert %q to real", s)
		}
		return f, nil
	case table.KindBoolean:
		b, ok := parseBool(s)
		if !ok {
			return nil, fmt.Errorf("cannot convert %q to boolean", s)
		}
		return b, nil
	default:
		return s, nil
	}
}

// uniqueHeaders replaces empty names with "Unnamed: i" and disambiguates
// repeated names by appending ".1", ".2", ... to later occurrences.
func uniqueHeaders(h []string) []string {
	out := make([]string, len(h))
	used := make(map[string]bool, len(h))
	next := make(map[string]int, len(h))
	for i, name := range h {
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		cand := name
		for used[cand] {
			next[name]++
			cand = fmt.Sprintf("%s.%d", name, next[name])
		}
		used[cand] = true
		out[i] = cand
	}
	return out
}

// naValues are the field values read as null.
var naValues = map[string]struct{}{
	"":        {},
	"NA":      {},
	"N/A":     {},
	"n/a":     {},
	"NaN":     {},
	"nan":     {},
	"-NaN":    {},
	"-nan":    {},
	"NULL":    {},
	"null":    {},
	"None":    {},
	"#N/A":    {},
	"#NA":     {},
	"<NA>":    {},
	"1.#IND":  {},
	"1.#QNAN": {},
}

func isNA(s string) bool {
	_, ok := naValues[s]
	return ok
}
