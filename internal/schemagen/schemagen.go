// Package schemagen emits a minimal JSON-Schema (draft-07) document that
// declares every listed column as a required number.
package schemagen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"wrangle/internal/table"
)

const (
	// DraftURI is the $schema value of every generated document.
	DraftURI = "http://json-schema.org/draft-07/schema#"
	// Title is the fixed document title.
	Title = "Generated schema for Root"
)

// Property is the schema of a single column.
type Property struct {
	Type string `json:"type"`
}

// Properties keeps column order when marshaled as a JSON object. A repeated
// name is emitted once, at its first position.
type Properties struct {
	names []string
	byKey map[string]Property
}

// Set adds or replaces the property for name.
func (p *Properties) Set(name string, prop Property) {
	if p.byKey == nil {
		p.byKey = map[string]Property{}
	}
	if _, ok := p.byKey[name]; !ok {
		p.names = append(p.names, name)
	}
	p.byKey[name] = prop
}

// Names returns the property names in order.
func (p Properties) Names() []string { return append([]string(nil), p.names...) }

// Get returns the property for name.
func (p Properties) Get(name string) (Property, bool) {
	prop, ok := p.byKey[name]
	return prop, ok
}

// MarshalJSON emits the properties as a JSON object in insertion order.
func (p Properties) MarshalJSON() ([]byte, error) {
	if len(p.names) == 0 {
		return []byte(`{}`), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalRaw(name)
		if err != nil {
			return nil, err
		}
		vb, err := marshalRaw(p.byKey[name])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalRaw is json.Marshal without HTML escaping.
func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Document is the generated schema. Field order is the emitted key order.
type Document struct {
	Schema     string     `json:"$schema"`
	Title      string     `json:"title"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Required   []string   `json:"required"`
}

// WriteError reports a schema file that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write schema %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Build returns the document for columns without touching the filesystem.
func Build(columns []string) Document {
	doc := Document{
		Schema:   DraftURI,
		Title:    Title,
		Type:     "object",
		Required: append(make([]string, 0, len(columns)), columns...),
	}
	for _, c := range columns {
		doc.Properties.Set(c, Property{Type: "number"})
	}
	return doc
}

// Marshal renders doc with four-space indentation. Non-ASCII and HTML
// characters are written as-is.
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Generate writes the schema for columns to path, replacing any existing
// file. Every failure is a *WriteError.
func Generate(columns []string, path string) error {
	data, err := Marshal(Build(columns))
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// Features returns the column names of t in order, minus any name in drop.
// It is the usual way to describe a feature matrix: the table without its
// target column.
func Features(t *table.Table, drop ...string) []string {
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	out := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !skip[c.Name] {
			out = append(out, c.Name)
		}
	}
	return out
}
