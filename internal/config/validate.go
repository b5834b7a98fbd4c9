package config

import (
	"fmt"
	"strings"

	"wrangle/internal/table"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into
// the config, e.g. "source.s3.bucket".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline lints a decoded Pipeline without mutating it.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; logs and metrics will use \"wrangle\"",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateMetrics(p.Metrics)...)
	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	switch strings.TrimSpace(s.Kind) {
	case "":
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	case SourceLocal:
		if strings.TrimSpace(s.Local.Dir) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.local.dir",
				Message:  "local source requires a non-empty dir",
			})
		}
	case SourceS3:
		if strings.TrimSpace(s.S3.Bucket) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.s3.bucket",
				Message:  "s3 source requires a bucket",
			})
		}
		if strings.TrimSpace(s.S3.Endpoint) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.s3.endpoint",
				Message:  "s3 source requires an endpoint (or S3_ENDPOINT)",
			})
		}
		if s.S3.AccessKeyID == "" || s.S3.SecretAccessKey == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.s3",
				Message:  "s3 source requires access_key_id and secret_access_key (or AWS_* env vars)",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unknown source kind %q; want %q or %q", s.Kind, SourceLocal, SourceS3),
		})
	}
	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue
	for col, typ := range p.CSV.StringMap("dtypes") {
		if _, err := table.ParseKind(typ); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("parser.csv.dtypes.%s", col),
				Message:  err.Error(),
			})
		}
	}
	if c := p.CSV.String("comma", ","); len([]rune(c)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.csv.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", c),
		})
	}
	switch o := p.JSON.String("orient", ""); o {
	case "", "records", "columns", "lines":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.json.orient",
			Message:  fmt.Sprintf("unknown orient %q", o),
		})
	}
	return issues
}

func validateRuntime(r RuntimeConfig) []Issue {
	if r.Workers < 0 {
		return []Issue{{
			Severity: SeverityError,
			Path:     "runtime.workers",
			Message:  "workers must not be negative",
		}}
	}
	return nil
}

func validateStorage(s Storage) []Issue {
	switch s.Kind {
	case "", "none":
		return nil
	case "sqlite", "postgres":
		if strings.TrimSpace(s.DB.DSN) == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "storage.db.dsn",
				Message:  "storage.db.dsn must not be empty",
			}}
		}
		return nil
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		}}
	}
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
		return nil
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			return []Issue{{
				Severity: SeverityWarning,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend without URL; http://localhost:9091 will be used",
			}}
		}
		return nil
	case "datadog":
		if strings.TrimSpace(m.StatsdAddr) == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.statsd_addr",
				Message:  "datadog backend requires statsd_addr (or DD_DOGSTATSD_URL)",
			}}
		}
		return nil
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		}}
	}
}
