// Package parquet decodes flat Parquet files into a typed table.
//
// The whole file is buffered in memory, since the column reader seeks to
// the footer first. Only flat schemas are supported: every leaf column must
// sit directly under the root and must not be repeated.
package parquet

import (
	"fmt"
	"io"

	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/common"
	pq "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"

	"wrangle/internal/table"
)

// readerParallelism is the number of goroutines the column reader may use
// per file.
const readerParallelism = 4

// Parser decodes Parquet input. It is stateless and safe for concurrent use.
type Parser struct{}

// NewParser returns a Parser.
func NewParser() *Parser { return &Parser{} }

// Decode reads r fully and converts every leaf column. The reader panics on
// some corrupt footers and page headers; such panics are returned as errors.
func (p *Parser) Decode(r io.Reader) (t *table.Table, err error) {
	defer func() {
		if v := recover(); v != nil {
			t, err = nil, fmt.Errorf("corrupt parquet: %v", v)
		}
	}()
	return decode(r)
}

func decode(r io.Reader) (*table.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	pf, err := buffer.NewBufferFile(data)
	if err != nil {
		return nil, fmt.Errorf("buffer parquet: %w", err)
	}
	pr, err := newColumnReader(pf)
	if err != nil {
		return nil, err
	}
	defer pr.ReadStop()

	sh := pr.SchemaHandler
	num := pr.GetNumRows()

	t := &table.Table{
		Columns: make([]table.Column, len(sh.ValueColumns)),
		Rows:    make([][]any, num),
	}
	for i := range t.Rows {
		t.Rows[i] = make([]any, len(sh.ValueColumns))
	}

	for c, path := range sh.ValueColumns {
		idx := sh.MapIndex[path]
		elem := sh.SchemaElements[idx]
		name := sh.Infos[idx].ExName
		if len(common.StrToPath(path)) != 2 {
			return nil, fmt.Errorf("column %q: nested columns are not supported", name)
		}
		if elem.GetRepetitionType() == pq.FieldRepetitionType_REPEATED {
			return nil, fmt.Errorf("column %q: repeated columns are not supported", name)
		}
		kind := kindOf(elem.GetType())
		t.Columns[c] = table.Column{Name: name, Kind: kind}
		if num == 0 {
			continue
		}

		values, _, _, err := pr.ReadColumnByIndex(int64(c), num)
		if err != nil {
			return nil, fmt.Errorf("read column %q: %w", name, err)
		}
		if int64(len(values)) != num {
			return nil, fmt.Errorf("column %q: read %d values, want %d", name, len(values), num)
		}
		for r, v := range values {
			t.Rows[r][c] = cell(v)
		}
	}
	return t, nil
}

// newColumnReader opens the footer.
func newColumnReader(pf source.ParquetFile) (*reader.ParquetReader, error) {
	pr, err := reader.NewParquetColumnReader(pf, readerParallelism)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	return pr, nil
}

// kindOf maps a physical type onto a column kind. INT96 timestamps and
// fixed-length byte arrays are carried as text.
func kindOf(t pq.Type) table.Kind {
	switch t {
	case pq.Type_BOOLEAN:
		return table.KindBoolean
	case pq.Type_INT32, pq.Type_INT64:
		return table.KindInteger
	case pq.Type_FLOAT, pq.Type_DOUBLE:
		return table.KindReal
	default:
		return table.KindText
	}
}

func cell(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool:
		return x
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return float64(x)
	case float64:
		return x
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
