package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// These tests validate that the pipeline JSON maps cleanly onto the Go
// struct graph. Parsing from strings keeps them hermetic.

func TestPipeline_Decode(t *testing.T) {
	t.Parallel()

	const js = `{
	  "job": "sales",
	  "source": {
	    "kind": "s3",
	    "s3": {
	      "endpoint": "https://s3.amazonaws.com",
	      "region": "us-east-1",
	      "bucket": "dynamic-bidding",
	      "prefix": "data/clean/",
	      "use_ssl": true
	    }
	  },
	  "parser": {
	    "csv": { "comma": ";", "dtypes": { "zip": "string", "qty": "int" } }
	  },
	  "runtime": { "workers": 4 },
	  "storage": { "kind": "sqlite", "db": { "dsn": "out.db", "table_prefix": "raw_" } },
	  "logging": { "level": "debug", "format": "json" }
	}`

	var p Pipeline
	if err := json.Unmarshal([]byte(js), &p); err != nil {
		t.Fatalf("json.Unmarshal(Pipeline): %v", err)
	}

	if p.Source.Kind != SourceS3 || p.Source.S3.Bucket != "dynamic-bidding" || p.Source.S3.Prefix != "data/clean/" {
		t.Fatalf("source decoded = %#v", p.Source)
	}
	if !p.Source.S3.UseSSL {
		t.Fatalf("source.s3.use_ssl = false, want true")
	}
	if got := p.Parser.CSV.Rune("comma", ','); got != ';' {
		t.Fatalf("parser.csv.comma = %q, want ';'", got)
	}
	dt := p.Parser.CSV.StringMap("dtypes")
	if dt["zip"] != "string" || dt["qty"] != "int" {
		t.Fatalf("parser.csv.dtypes = %#v", dt)
	}
	// "json" is absent, so the bag is nil; accessors must still be safe.
	if got := p.Parser.JSON.String("x", "def"); got != "def" {
		t.Fatalf("nil Options.String = %q, want def", got)
	}
	if p.Runtime.Workers != 4 {
		t.Fatalf("runtime.workers = %d, want 4", p.Runtime.Workers)
	}
	if p.Storage.Kind != "sqlite" || p.Storage.DB.DSN != "out.db" || p.Storage.DB.TablePrefix != "raw_" {
		t.Fatalf("storage decoded = %#v", p.Storage)
	}
	if p.Logging.Level != "debug" || p.Logging.Format != "json" {
		t.Fatalf("logging decoded = %#v", p.Logging)
	}
}

func TestOptions_NullDecodesToEmptyMap(t *testing.T) {
	t.Parallel()

	var p Parser
	if err := json.Unmarshal([]byte(`{"csv": null}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.CSV == nil {
		t.Fatalf("csv options = nil, want empty map")
	}
	if len(p.CSV) != 0 {
		t.Fatalf("csv options = %#v, want empty", p.CSV)
	}
}

func TestOptions_Accessors(t *testing.T) {
	t.Parallel()

	o := Options{
		"s":   "x",
		"b":   true,
		"n":   float64(3),
		"m":   map[string]any{"a": "int", "b": 1},
		"bad": 12,
	}
	if got := o.String("s", "d"); got != "x" {
		t.Errorf("String = %q", got)
	}
	if got := o.String("bad", "d"); got != "d" {
		t.Errorf("String(bad) = %q, want default", got)
	}
	if got := o.Bool("b", false); !got {
		t.Errorf("Bool = false")
	}
	if got := o.Int("n", 0); got != 3 {
		t.Errorf("Int = %d", got)
	}
	m := o.StringMap("m")
	if len(m) != 1 || m["a"] != "int" {
		t.Errorf("StringMap = %#v, want only a=int", m)
	}
	if got := o.Rune("missing", ','); got != ',' {
		t.Errorf("Rune default = %q", got)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"AWS_ACCESS_KEY_ID":     "AKIA",
		"AWS_SECRET_ACCESS_KEY": "secret",
		"AWS_DEFAULT_REGION":    "eu-west-1",
		"S3_ENDPOINT":           "http://minio:9000",
	}
	p := Pipeline{Source: Source{Kind: SourceS3, S3: SourceBucket{Bucket: "b", AccessKeyID: "from-file"}}}
	p.ApplyEnv(func(k string) string { return env[k] })

	if p.Source.S3.AccessKeyID != "from-file" {
		t.Fatalf("access key = %q, file value must win", p.Source.S3.AccessKeyID)
	}
	if p.Source.S3.SecretAccessKey != "secret" {
		t.Fatalf("secret = %q", p.Source.S3.SecretAccessKey)
	}
	if p.Source.S3.Region != "eu-west-1" {
		t.Fatalf("region = %q", p.Source.S3.Region)
	}
	if p.Source.S3.Endpoint != "http://minio:9000" {
		t.Fatalf("endpoint = %q", p.Source.S3.Endpoint)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "p.json")
	if err := os.WriteFile(path, []byte(`{"source":{"kind":"local","local":{"dir":"x"}}}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Source.Local.Dir != "x" {
		t.Fatalf("local.dir = %q", p.Source.Local.Dir)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil || !strings.Contains(err.Error(), "open config") {
		t.Fatalf("Load(missing) err = %v, want open config error", err)
	}
}
