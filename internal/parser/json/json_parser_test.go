package json

import (
	"reflect"
	"strings"
	"testing"

	"wrangle/internal/config"
	"wrangle/internal/table"
)

func mustDecode(t *testing.T, opt Options, in string) *table.Table {
	t.Helper()
	tb, err := NewParser(opt).Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode(%q): %v", in, err)
	}
	return tb
}

/*
TestDecode_Layouts verifies that the three supported layouts produce the
same table for the same data:

  - records: top-level array of objects,
  - columns: object of arrays, and object of index-keyed objects,
  - lines: newline-delimited objects.
*/
func TestDecode_Layouts(t *testing.T) {
	want := &table.Table{
		Columns: []table.Column{
			{Name: "id", Kind: table.KindInteger},
			{Name: "name", Kind: table.KindText},
		},
		Rows: [][]any{{int64(1), "a"}, {int64(2), "b"}},
	}

	tests := []struct {
		name string
		in   string
	}{
		{"records", `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`},
		{"columns_arrays", `{"id":[1,2],"name":["a","b"]}`},
		{"columns_index", `{"id":{"0":1,"1":2},"name":{"0":"a","1":"b"}}`},
		{"lines", "{\"id\":1,\"name\":\"a\"}\n{\"id\":2,\"name\":\"b\"}\n"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := mustDecode(t, Options{}, tc.in)
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("Decode = %#v; want %#v", got, want)
			}
		})
	}
}

/*
TestDecode_KeyOrderAndMissing verifies that columns follow first appearance
(not alphabetical order) and that keys absent from a record become nulls.
*/
func TestDecode_KeyOrderAndMissing(t *testing.T) {
	t.Parallel()

	got := mustDecode(t, Options{}, `[{"z":1,"a":"x"},{"a":"y","m":true}]`)
	if names := got.Names(); !reflect.DeepEqual(names, []string{"z", "a", "m"}) {
		t.Fatalf("Names() = %v; want [z a m]", names)
	}
	want := [][]any{{int64(1), "x", nil}, {nil, "y", true}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("Rows = %#v; want %#v", got.Rows, want)
	}
}

/*
TestDecode_KindUnification verifies per-column typing:

  - integers mixed with reals widen to real,
  - any other mix becomes text with values stringified,
  - nested values become compact JSON text with key order kept,
  - all-null columns are text.
*/
func TestDecode_KindUnification(t *testing.T) {
	t.Parallel()

	in := `[
	  {"n":1,   "mix":1,     "nest":{"b":1,"a":[1,2]}, "none":null},
	  {"n":2.5, "mix":"two", "nest":null,              "none":null}
	]`
	got := mustDecode(t, Options{}, in)

	wantCols := []table.Column{
		{Name: "n", Kind: table.KindReal},
		{Name: "mix", Kind: table.KindText},
		{Name: "nest", Kind: table.KindText},
		{Name: "none", Kind: table.KindText},
	}
	if !reflect.DeepEqual(got.Columns, wantCols) {
		t.Fatalf("Columns = %#v; want %#v", got.Columns, wantCols)
	}
	wantRows := [][]any{
		{1.0, "1", `{"b":1,"a":[1,2]}`, nil},
		{2.5, "two", nil, nil},
	}
	if !reflect.DeepEqual(got.Rows, wantRows) {
		t.Fatalf("Rows = %#v; want %#v", got.Rows, wantRows)
	}
}

func TestDecode_ColumnsUnevenLengthsPadded(t *testing.T) {
	t.Parallel()

	got := mustDecode(t, Options{}, `{"a":[1,2,3],"b":["x"]}`)
	want := [][]any{{int64(1), "x"}, {int64(2), nil}, {int64(3), nil}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("Rows = %#v; want %#v", got.Rows, want)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		opt  Options
		in   string
	}{
		{"empty", Options{}, ""},
		{"truncated", Options{}, `[{"a":1}`},
		{"syntax", Options{}, `{"a":}`},
		{"array_of_scalars", Options{}, `[1,2]`},
		{"scalar_stream", Options{}, "1\n2\n"},
		{"forced_records_on_object", Options{Orient: OrientRecords}, `{"a":[1]}`},
		{"forced_columns_scalar", Options{Orient: OrientColumns}, `{"a":1}`},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewParser(tc.opt).Decode(strings.NewReader(tc.in)); err == nil {
				t.Fatalf("Decode(%q) err = nil; want error", tc.in)
			}
		})
	}
}

func TestDecode_SingleFlatObjectIsOneRow(t *testing.T) {
	t.Parallel()

	got := mustDecode(t, Options{}, `{"a":1,"b":"x"}`)
	if got.Len() != 1 || !reflect.DeepEqual(got.Rows[0], []any{int64(1), "x"}) {
		t.Fatalf("Rows = %#v; want one row [1 x]", got.Rows)
	}
}

func TestFromConfigOptions(t *testing.T) {
	t.Parallel()

	opt, err := FromConfigOptions(config.Options{"orient": "lines"})
	if err != nil || opt.Orient != OrientLines {
		t.Fatalf("FromConfigOptions = %#v, %v; want lines", opt, err)
	}
	if opt, err := FromConfigOptions(nil); err != nil || opt.Orient != OrientAuto {
		t.Fatalf("FromConfigOptions(nil) = %#v, %v; want auto", opt, err)
	}
	if _, err := FromConfigOptions(config.Options{"orient": "split"}); err == nil {
		t.Fatalf("unknown orient accepted")
	}
}
