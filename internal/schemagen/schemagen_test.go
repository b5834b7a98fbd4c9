package schemagen

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"wrangle/internal/table"
)

func TestGenerate_AgeIncome(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schema.json")
	if err := Generate([]string{"age", "income"}, path); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var got struct {
		Schema     string                       `json:"$schema"`
		Title      string                       `json:"title"`
		Type       string                       `json:"type"`
		Properties map[string]map[string]string `json:"properties"`
		Required   []string                     `json:"required"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, data)
	}
	if got.Schema != DraftURI || got.Title != Title || got.Type != "object" {
		t.Fatalf("header = %q %q %q", got.Schema, got.Title, got.Type)
	}
	if !reflect.DeepEqual(got.Required, []string{"age", "income"}) {
		t.Fatalf("required = %v", got.Required)
	}
	want := map[string]map[string]string{
		"age":    {"type": "number"},
		"income": {"type": "number"},
	}
	if !reflect.DeepEqual(got.Properties, want) {
		t.Fatalf("properties = %v", got.Properties)
	}
}

func TestMarshal_Layout(t *testing.T) {
	t.Parallel()

	got, err := Marshal(Build([]string{"b<1>", "a"}))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{
    "$schema": "http://json-schema.org/draft-07/schema#",
    "title": "Generated schema for Root",
    "type": "object",
    "properties": {
        "b<1>": {
            "type": "number"
        },
        "a": {
            "type": "number"
        }
    },
    "required": [
        "b<1>",
        "a"
    ]
}`
	if string(got) != want {
		t.Fatalf("Marshal =\n%s\nwant\n%s", got, want)
	}
}

func TestMarshal_Empty(t *testing.T) {
	t.Parallel()

	got, err := Marshal(Build(nil))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(got, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if props, ok := m["properties"].(map[string]any); !ok || len(props) != 0 {
		t.Fatalf("properties = %#v, want {}", m["properties"])
	}
	if req, ok := m["required"].([]any); !ok || len(req) != 0 {
		t.Fatalf("required = %#v, want []", m["required"])
	}
}

func TestBuild_RepeatedColumn(t *testing.T) {
	t.Parallel()

	doc := Build([]string{"x", "y", "x"})
	if got := doc.Properties.Names(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("property names = %v", got)
	}
	if !reflect.DeepEqual(doc.Required, []string{"x", "y", "x"}) {
		t.Fatalf("required = %v", doc.Required)
	}
	if p, ok := doc.Properties.Get("y"); !ok || p.Type != "number" {
		t.Fatalf("Get(y) = %v, %v", p, ok)
	}
}

func TestGenerate_Overwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schema.json")
	if err := os.WriteFile(path, []byte("old content that is longer than needed"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Generate([]string{"x"}, path); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	data, _ := os.ReadFile(path)
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("file is not valid JSON after overwrite: %v", err)
	}
}

func TestGenerate_WriteError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "schema.json")
	err := Generate([]string{"age"}, path)
	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("err = %v, want *WriteError", err)
	}
	if we.Path != path || !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("WriteError = %+v", we)
	}
}

func TestFeatures(t *testing.T) {
	t.Parallel()

	tb := table.New(
		table.Column{Name: "AGE", Kind: table.KindInteger},
		table.Column{Name: "INCOME", Kind: table.KindReal},
		table.Column{Name: "TARGET", Kind: table.KindBoolean},
	)
	tests := []struct {
		name string
		drop []string
		want []string
	}{
		{"no_drop", nil, []string{"AGE", "INCOME", "TARGET"}},
		{"drop_target", []string{"TARGET"}, []string{"AGE", "INCOME"}},
		{"unknown_drop_ignored", []string{"NOPE"}, []string{"AGE", "INCOME", "TARGET"}},
		{"drop_all", []string{"AGE", "INCOME", "TARGET"}, []string{}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Features(tb, tc.drop...); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Features = %v, want %v", got, tc.want)
			}
		})
	}
}
