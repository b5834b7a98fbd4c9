package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"wrangle/internal/storage"
	"wrangle/internal/table"
)

/*
Package-level test helpers
*/

func openRepo(tb testing.TB) *Repository {
	tb.Helper()
	dsn := filepath.Join(tb.TempDir(), "out.db")
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: dsn})
	if err != nil {
		tb.Fatalf("NewRepository: %v", err)
	}
	tb.Cleanup(closeFn)
	return r
}

func sample() *table.Table {
	return &table.Table{
		Columns: []table.Column{
			{Name: "ID", Kind: table.KindInteger},
			{Name: "PRODUCT_NAME", Kind: table.KindText},
			{Name: "UNIT_PRICE", Kind: table.KindReal},
			{Name: "ACTIVE", Kind: table.KindBoolean},
		},
		Rows: [][]any{
			{int64(1), "widget", 9.5, true},
			{int64(2), nil, nil, false},
		},
	}
}

/*
Unit tests
*/

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := BuildCreateTableSQL("main.sales", sample().Columns)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	want := "CREATE TABLE IF NOT EXISTS \"main\".\"sales\" (\n" +
		"  \"ID\" INTEGER,\n" +
		"  \"PRODUCT_NAME\" TEXT,\n" +
		"  \"UNIT_PRICE\" REAL,\n" +
		"  \"ACTIVE\" INTEGER\n" +
		");"
	if got != want {
		t.Fatalf("BuildCreateTableSQL =\n%s\nwant\n%s", got, want)
	}

	if _, err := BuildCreateTableSQL("", sample().Columns); err == nil {
		t.Fatalf("empty table name accepted")
	}
	if _, err := BuildCreateTableSQL("t", nil); err == nil {
		t.Fatalf("empty column list accepted")
	}
	if _, err := BuildCreateTableSQL("t", []table.Column{{Name: " "}}); err == nil {
		t.Fatalf("blank column name accepted")
	}
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()
	if got := quoteIdent(`we"ird`); got != `"we""ird"` {
		t.Fatalf("quoteIdent = %s", got)
	}
}

func TestExportRoundTrip(t *testing.T) {
	t.Parallel()

	r := openRepo(t)
	ctx := context.Background()
	tb := sample()

	n, err := storage.Export(ctx, &wrappedRepo{Repository: r}, "test", "sales", tb, false)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != 2 {
		t.Fatalf("Export n = %d, want 2", n)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT "ID", "PRODUCT_NAME", "UNIT_PRICE", "ACTIVE" FROM "sales" ORDER BY "ID"`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer rows.Close()

	type rec struct {
		id     int64
		name   *string
		price  *float64
		active int64
	}
	var got []rec
	for rows.Next() {
		var x rec
		if err := rows.Scan(&x.id, &x.name, &x.price, &x.active); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, x)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows = %d, want 2", len(got))
	}
	if got[0].name == nil || *got[0].name != "widget" || got[0].price == nil || *got[0].price != 9.5 || got[0].active != 1 {
		t.Fatalf("row 0 = %+v", got[0])
	}
	if got[1].name != nil || got[1].price != nil || got[1].active != 0 {
		t.Fatalf("row 1 = %+v, want nulls and inactive", got[1])
	}
}

func TestEnsureTable_Replace(t *testing.T) {
	t.Parallel()

	r := openRepo(t)
	ctx := context.Background()
	tb := sample()

	if _, err := storage.Export(ctx, &wrappedRepo{Repository: r}, "test", "t", tb, false); err != nil {
		t.Fatalf("Export: %v", err)
	}
	// Without replace the rows accumulate.
	if _, err := storage.Export(ctx, &wrappedRepo{Repository: r}, "test", "t", tb, false); err != nil {
		t.Fatalf("Export again: %v", err)
	}
	if got := count(t, r, "t"); got != 4 {
		t.Fatalf("count without replace = %d, want 4", got)
	}

	narrow := table.New(table.Column{Name: "X", Kind: table.KindText})
	narrow.Rows = [][]any{{"only"}}
	if _, err := storage.Export(ctx, &wrappedRepo{Repository: r}, "test", "t", narrow, true); err != nil {
		t.Fatalf("Export replace: %v", err)
	}
	if got := count(t, r, "t"); got != 1 {
		t.Fatalf("count after replace = %d, want 1", got)
	}
}

func count(tb testing.TB, r *Repository, name string) int {
	tb.Helper()
	var n int
	if err := r.db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&n); err != nil {
		tb.Fatalf("count: %v", err)
	}
	return n
}

func TestCopyFrom_Errors(t *testing.T) {
	t.Parallel()

	r := openRepo(t)
	ctx := context.Background()
	if err := r.EnsureTable(ctx, "t", []table.Column{{Name: "A"}, {Name: "B"}}, false); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if _, err := r.CopyFrom(ctx, "t", nil, [][]any{{1}}); err == nil {
		t.Fatalf("CopyFrom without columns = nil error")
	}
	if n, err := r.CopyFrom(ctx, "t", []string{"A"}, nil); err != nil || n != 0 {
		t.Fatalf("CopyFrom(no rows) = %d, %v", n, err)
	}
	_, err := r.CopyFrom(ctx, "t", []string{"A", "B"}, [][]any{{"x", "y"}, {"short"}})
	if err == nil || !strings.Contains(err.Error(), "row length 1 != columns length 2") {
		t.Fatalf("CopyFrom(short row) err = %v", err)
	}
	if got := count(t, r, "t"); got != 0 {
		t.Fatalf("count after rollback = %d, want 0", got)
	}
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()
	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatalf("NewRepository(empty DSN) = nil error")
	}
}

func TestRegisteredWithFactory(t *testing.T) {
	t.Parallel()

	found := false
	for _, k := range storage.ListKinds() {
		if k == "sqlite" {
			found = true
		}
	}
	if !found {
		t.Fatalf("sqlite not registered: %v", storage.ListKinds())
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "sqlite", DSN: filepath.Join(t.TempDir(), "f.db")})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	repo.Close()
	if MapType(table.KindBoolean) != "INTEGER" {
		t.Fatalf("MapType(boolean) = %s", MapType(table.KindBoolean))
	}
}
