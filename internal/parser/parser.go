// Package parser turns raw file contents into tables. The Dispatcher selects a
// format-specific Decoder strictly by file extension.
package parser

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"wrangle/internal/config"
	csvparser "wrangle/internal/parser/csv"
	jsonparser "wrangle/internal/parser/json"
	parquetparser "wrangle/internal/parser/parquet"
	"wrangle/internal/table"
)

// Decoder decodes a complete input into a table.
type Decoder interface {
	Decode(r io.Reader) (*table.Table, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(r io.Reader) (*table.Table, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(r io.Reader) (*table.Table, error) { return f(r) }

type entry struct {
	format string
	dec    Decoder
}

// Dispatcher maps lower-cased extensions (".csv") to decoders.
type Dispatcher struct {
	byExt map[string]entry
}

// Options configures the built-in decoders.
type Options struct {
	CSV  csvparser.Options
	JSON jsonparser.Options
}

// FromConfig builds Options from the parser section of a pipeline config.
func FromConfig(p config.Parser) (Options, error) {
	c, err := csvparser.FromConfigOptions(p.CSV)
	if err != nil {
		return Options{}, fmt.Errorf("parser.csv: %w", err)
	}
	j, err := jsonparser.FromConfigOptions(p.JSON)
	if err != nil {
		return Options{}, fmt.Errorf("parser.json: %w", err)
	}
	return Options{CSV: c, JSON: j}, nil
}

// NewDispatcher returns a Dispatcher with the CSV, JSON and Parquet decoders
// registered.
func NewDispatcher(opt Options) *Dispatcher {
	d := &Dispatcher{byExt: map[string]entry{}}
	d.Register(".csv", "csv", csvparser.NewParser(opt.CSV))
	d.Register(".json", "json", jsonparser.NewParser(opt.JSON))
	d.Register(".parquet", "parquet", parquetparser.NewParser())
	return d
}

// Register adds or replaces the decoder for ext. ext is matched
// case-insensitively and may be given with or without the leading dot.
func (d *Dispatcher) Register(ext, format string, dec Decoder) {
	d.byExt[normExt(ext)] = entry{format: format, dec: dec}
}

// Supports reports whether a decoder is registered for ext.
func (d *Dispatcher) Supports(ext string) bool {
	_, ok := d.byExt[normExt(ext)]
	return ok
}

// Extensions returns the registered extensions in sorted order.
func (d *Dispatcher) Extensions() []string {
	out := make([]string, 0, len(d.byExt))
	for ext := range d.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Decode decodes r with the decoder registered for ext. An unknown
// extension yields *UnsupportedFormatError; a decoder failure is wrapped in
// *DecodeError.
func (d *Dispatcher) Decode(ext string, r io.Reader) (*table.Table, error) {
	e, ok := d.byExt[normExt(ext)]
	if !ok {
		return nil, &UnsupportedFormatError{Ext: ext}
	}
	t, err := e.dec.Decode(r)
	if err != nil {
		return nil, &DecodeError{Format: e.format, Err: err}
	}
	return t, nil
}

// Ext returns the lower-cased extension of the last path element of
// locator, including the dot, or "" when the name has no dot.
func Ext(locator string) string {
	return strings.ToLower(path.Ext(strings.ReplaceAll(locator, "\\", "/")))
}

func normExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
