package parquet

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/writer"

	"wrangle/internal/table"
)

const testSchema = `{
  "Tag": "name=parquet_go_root, repetitiontype=REQUIRED",
  "Fields": [
    {"Tag": "name=id, type=INT64, repetitiontype=OPTIONAL"},
    {"Tag": "name=name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"},
    {"Tag": "name=score, type=DOUBLE, repetitiontype=OPTIONAL"},
    {"Tag": "name=active, type=BOOLEAN, repetitiontype=OPTIONAL"},
    {"Tag": "name=qty, type=INT32, repetitiontype=REQUIRED"}
  ]
}`

// writeParquet encodes JSON rows with the given schema into an in-memory file.
func writeParquet(t *testing.T, schema string, rows ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	pfw := writerfile.NewWriterFile(&buf)
	pw, err := writer.NewJSONWriter(schema, pfw, 1)
	if err != nil {
		t.Fatalf("NewJSONWriter: %v", err)
	}
	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			t.Fatalf("Write(%s): %v", r, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		t.Fatalf("WriteStop: %v", err)
	}
	_ = pfw.Close()
	return buf.Bytes()
}

func TestDecode_FlatFile(t *testing.T) {
	data := writeParquet(t, testSchema,
		`{"id": 1, "name": "Alice", "score": 9.5, "active": true, "qty": 3}`,
		`{"id": 2, "name": null, "score": null, "active": false, "qty": 4}`,
	)

	got, err := NewParser().Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := &table.Table{
		Columns: []table.Column{
			{Name: "id", Kind: table.KindInteger},
			{Name: "name", Kind: table.KindText},
			{Name: "score", Kind: table.KindReal},
			{Name: "active", Kind: table.KindBoolean},
			{Name: "qty", Kind: table.KindInteger},
		},
		Rows: [][]any{
			{int64(1), "Alice", 9.5, true, int64(3)},
			{int64(2), nil, nil, false, int64(4)},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_NoRows(t *testing.T) {
	data := writeParquet(t, testSchema)

	got, err := NewParser().Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", got.Len())
	}
	if len(got.Columns) != 5 {
		t.Fatalf("columns = %v, want 5", got.Names())
	}
}

func TestDecode_NotParquet(t *testing.T) {
	for _, in := range []string{"", "id,name\n1,a\n", "PAR1garbagePAR1"} {
		if _, err := NewParser().Decode(strings.NewReader(in)); err == nil {
			t.Fatalf("Decode(%q) err = nil, want error", in)
		}
	}
}

func manyRows(n int) []string {
	rows := make([]string, n)
	for i := range rows {
		rows[i] = fmt.Sprintf(`{"id": %d, "name": "n%d", "score": 1.5, "active": true, "qty": %d}`, i, i, i)
	}
	return rows
}

/*
A damaged page header makes the column reader panic deep inside page
decoding. Decode must turn that into an ordinary error.
*/
func TestDecode_CorruptPageHeader(t *testing.T) {
	data := writeParquet(t, testSchema, manyRows(50)...)
	data[10] = 0xff

	got, err := NewParser().Decode(bytes.NewReader(data))
	if err == nil {
		t.Fatalf("Decode err = nil, want error (table %v)", got)
	}
	if got != nil {
		t.Fatalf("Decode returned a table alongside err %v", err)
	}
}
