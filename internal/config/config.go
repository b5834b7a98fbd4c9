// Package config defines the JSON-serializable configuration model for a
// wrangle run. It is small and explicit so that a pipeline can be loaded from
// disk and passed through the program without additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job":     "sales",
//	  "source":  { "kind": "local", "local": { "dir": "data/" } },
//	  "parser":  { "csv": { "comma": ",", "dtypes": { "zip": "string" } } },
//	  "runtime": { "workers": 4 },
//	  "storage": { "kind": "sqlite", "db": { "dsn": "out.db" } }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Source kinds.
const (
	SourceLocal = "local"
	SourceS3    = "s3"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run for logs and metrics grouping.
	Job string `json:"job"`

	// Source selects where candidate files are listed and fetched from.
	Source Source `json:"source"`

	// Parser carries per-format decoder options.
	Parser Parser `json:"parser"`

	Runtime RuntimeConfig `json:"runtime"`

	// Storage optionally exports every loaded table into a database.
	Storage Storage `json:"storage"`

	Logging Logging `json:"logging"`
	Metrics Metrics `json:"metrics"`
}

// RuntimeConfig controls concurrency of the fetch+decode stage.
type RuntimeConfig struct {
	// Workers is the number of references processed concurrently. Values
	// below 2 mean strictly sequential processing.
	Workers int `json:"workers"`
}

// Source identifies the data source.
type Source struct {
	// Kind selects the source implementation: "local" or "s3".
	Kind string `json:"kind"`

	Local SourceLocalDir `json:"local"`
	S3    SourceBucket   `json:"s3"`
}

// SourceLocalDir holds configuration for the "local" source kind.
type SourceLocalDir struct {
	// Dir is the directory whose files are ingested (non-recursive).
	Dir string `json:"dir"`

	// Pattern optionally restricts the listing with a filepath.Match glob
	// applied to the base name, e.g. "*.csv".
	Pattern string `json:"pattern"`
}

// SourceBucket holds configuration for the "s3" source kind.
type SourceBucket struct {
	Endpoint        string `json:"endpoint"`
	Region          string `json:"region"`
	Bucket          string `json:"bucket"`
	Prefix          string `json:"prefix"`
	UseSSL          bool   `json:"use_ssl"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

// Parser holds free-form option bags for the format decoders.
//
// CSV keys: comma (string), dtypes (object of column -> type name).
// JSON keys: orient ("records", "columns", "lines"; empty detects).
type Parser struct {
	CSV  Options `json:"csv"`
	JSON Options `json:"json"`
}

// Storage selects an optional export sink for the loaded tables.
type Storage struct {
	// Kind selects the backend: "", "none", "sqlite" or "postgres".
	Kind string   `json:"kind"`
	DB   DBConfig `json:"db"`
}

// DBConfig configures the export sink.
type DBConfig struct {
	// DSN is the driver connection string.
	DSN string `json:"dsn"`

	// TablePrefix is prepended to every destination table name.
	TablePrefix string `json:"table_prefix"`

	// Replace drops an existing destination table before creating it.
	Replace bool `json:"replace"`
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Metrics configures the metrics backend.
type Metrics struct {
	// Backend is "none" (default), "pushgateway" or "datadog".
	Backend        string `json:"backend"`
	PushgatewayURL string `json:"pushgateway_url"`

	// DogStatsD settings for the "datadog" backend.
	StatsdAddr string   `json:"statsd_addr"`
	Namespace  string   `json:"namespace"`
	Tags       []string `json:"tags"`
}

// Load reads and decodes a pipeline file.
func Load(path string) (Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var p Pipeline
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return p, nil
}

// ApplyEnv fills unset credentials and endpoints from the environment:
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_REGION, S3_ENDPOINT,
// PUSHGATEWAY_URL and DD_DOGSTATSD_URL. Values already present in the file win.
func (p *Pipeline) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	fill := func(dst *string, keys ...string) {
		if strings.TrimSpace(*dst) != "" {
			return
		}
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	fill(&p.Source.S3.AccessKeyID, "AWS_ACCESS_KEY_ID")
	fill(&p.Source.S3.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	fill(&p.Source.S3.Region, "AWS_REGION", "AWS_DEFAULT_REGION")
	fill(&p.Source.S3.Endpoint, "S3_ENDPOINT")
	fill(&p.Metrics.PushgatewayURL, "PUSHGATEWAY_URL")
	fill(&p.Metrics.StatsdAddr, "DD_DOGSTATSD_URL")
}

// Options is a small helper to fetch typed values from arbitrary JSON maps.
// It performs only minimal type coercion and returns provided defaults when
// a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key is
// missing or empty.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// whose values are strings. Non-string values are ignored.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		switch m := v.(type) {
		case map[string]any:
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		case map[string]string:
			for k, s := range m {
				res[k] = s
			}
		}
	}
	return res
}

// UnmarshalJSON makes a missing or null options object decode to an empty,
// non-nil map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
