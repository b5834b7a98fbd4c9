package builtin

import (
	"math"
	"reflect"
	"testing"

	"wrangle/internal/table"
)

func TestDeDup_DropsExactDuplicatesKeepFirst(t *testing.T) {
	in := &table.Table{
		Columns: []table.Column{{Name: "a", Kind: table.KindText}, {Name: "b", Kind: table.KindInteger}},
		Rows: [][]any{
			{"x", int64(1)},
			{"y", int64(2)},
			{"x", int64(1)},
			{nil, nil},
			{"y", int64(3)},
			{nil, nil},
			{"x", int64(1)},
		},
	}
	got := DeDup{}.Apply(in)

	want := [][]any{
		{"x", int64(1)},
		{"y", int64(2)},
		{nil, nil},
		{"y", int64(3)},
	}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("DeDup rows = %#v, want %#v", got.Rows, want)
	}
	if removed := in.Len() - got.Len(); removed != 3 {
		t.Fatalf("removed %d rows, want 3", removed)
	}
	if in.Len() != 7 {
		t.Fatalf("DeDup mutated its input: %d rows", in.Len())
	}
}

func TestDeDup_KindsDoNotCollide(t *testing.T) {
	in := &table.Table{
		Columns: []table.Column{{Name: "v"}},
		Rows: [][]any{
			{"1"},
			{int64(1)},
			{1.0},
			{true},
			{nil},
			{""},
		},
	}
	if got := (DeDup{}).Apply(in); got.Len() != in.Len() {
		t.Fatalf("DeDup dropped distinct cells: %#v", got.Rows)
	}
}

func TestDeDup_Reals(t *testing.T) {
	in := &table.Table{
		Columns: []table.Column{{Name: "r", Kind: table.KindReal}},
		Rows:    [][]any{{0.0}, {math.Copysign(0, -1)}, {math.NaN()}, {math.NaN()}, {1.5}},
	}
	got := DeDup{}.Apply(in)
	if got.Len() != 3 {
		t.Fatalf("DeDup rows = %#v, want [0 NaN 1.5]", got.Rows)
	}
}

func TestDeDup_Keys(t *testing.T) {
	in := &table.Table{
		Columns: []table.Column{{Name: "id"}, {Name: "note"}},
		Rows:    [][]any{{"1", "a"}, {"1", "b"}, {"2", "c"}},
	}
	got := DeDup{Keys: []string{"id"}}.Apply(in)
	want := [][]any{{"1", "a"}, {"2", "c"}}
	if !reflect.DeepEqual(got.Rows, want) {
		t.Fatalf("DeDup(keys) rows = %#v, want %#v", got.Rows, want)
	}
}

func TestDeDup_Empty(t *testing.T) {
	in := table.New(table.Column{Name: "a"})
	got := DeDup{}.Apply(in)
	if got.Len() != 0 || !reflect.DeepEqual(got.Names(), []string{"a"}) {
		t.Fatalf("DeDup(empty) = %#v", got)
	}
}
