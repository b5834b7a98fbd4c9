// Command wrangle ingests every CSV, JSON and Parquet file of a local
// directory or S3 bucket, cleans each one into a table, and optionally
// previews a table, writes a JSON schema for it, or exports all tables into
// a database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"wrangle/internal/config"
	"wrangle/internal/logging"
	"wrangle/internal/metrics"
	"wrangle/internal/metrics/datadog"
	"wrangle/internal/metrics/prompush"

	// register all backends with the storage factory.
	_ "wrangle/internal/storage/all"
)

// main loads the pipeline config, sets up logging and metrics, and hands
// over to run.
func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		opts              runOptions
		drop              string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/pipelines/sample.json", "pipeline config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend override (pushgateway, datadog, none)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.BoolVar(&opts.list, "list", false, "print the short name, key and preview command of every file and exit")
	flag.StringVar(&opts.preview, "preview", "", "print info and head of the table with this key")
	flag.IntVar(&opts.head, "head", 5, "rows shown by -preview")
	flag.StringVar(&opts.schemaPath, "schema", "", "write a JSON schema for a loaded table to this path")
	flag.StringVar(&opts.schemaTable, "schema-table", "", "key of the table used by -schema (optional when one table is loaded)")
	flag.StringVar(&drop, "drop", "", "comma-separated columns left out of the schema, e.g. the target column (raw or canonical names)")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	envErr := godotenv.Overload()

	p, issues, err := loadPipeline(cfgPath, metricsBackendFlg, os.Getenv)
	if err != nil {
		fatalf("%v", err)
	}
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid: %s", cfgPath)
	}
	if validate {
		fmt.Fprintf(os.Stderr, "configuration is valid: %s\n", cfgPath)
		os.Exit(0)
	}

	level := p.Logging.Level
	if *verbose {
		level = "debug"
	}
	logger := logging.Setup(level, p.Logging.Format)
	if envErr == nil {
		logger.Debug("loaded .env file (overwriting existing env vars)")
	}

	stopMetrics := setupMetrics(logger, p)

	opts.drop = splitList(drop)
	opts.command = "wrangle -config " + cfgPath

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	start := time.Now()
	err = run(ctx, p, opts, os.Stdout)
	stop()
	stopMetrics()
	if err != nil {
		fatalf("%v", err)
	}
	logger.Debug("completed", "elapsed", time.Since(start).Truncate(time.Millisecond))
}

// loadPipeline reads the config, overlays the environment and command-line
// overrides, and lints the result.
func loadPipeline(path, metricsBackend string, getenv func(string) string) (config.Pipeline, []config.Issue, error) {
	p, err := config.Load(path)
	if err != nil {
		return config.Pipeline{}, nil, err
	}
	p.ApplyEnv(getenv)
	if metricsBackend != "" {
		p.Metrics.Backend = metricsBackend
	}
	return p, config.ValidatePipeline(p), nil
}

// setupMetrics installs the configured metrics backend and returns the
// function that flushes and releases it.
func setupMetrics(logger *slog.Logger, p config.Pipeline) func() {
	job := p.Job
	if job == "" {
		job = "wrangle"
	}

	switch p.Metrics.Backend {
	case "pushgateway":
		gwURL := p.Metrics.PushgatewayURL
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			logger.Warn("metrics: prom push backend unavailable; using nop", "error", err)
			return func() {}
		}
		logger.Debug("metrics enabled", "backend", "pushgateway", "url", gwURL, "job", job)
		metrics.SetBackend(b)
		return flushMetrics(logger)

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.StatsdAddr,
			Namespace:  p.Metrics.Namespace,
			GlobalTags: append([]string{"job:" + job}, p.Metrics.Tags...),
		})
		if err != nil {
			logger.Warn("metrics: datadog backend unavailable; using nop", "error", err)
			return func() {}
		}
		logger.Debug("metrics enabled", "backend", "datadog", "addr", p.Metrics.StatsdAddr)
		metrics.SetBackend(b)
		flush := flushMetrics(logger)
		return func() {
			flush()
			if err := b.Close(); err != nil {
				logger.Warn("metrics: close", "error", err)
			}
		}

	case "", "none":
		logger.Debug("metrics disabled")
	default:
		logger.Warn("metrics: unknown backend; metrics disabled", "backend", p.Metrics.Backend)
	}
	return func() {}
}

func flushMetrics(logger *slog.Logger) func() {
	return func() {
		if err := metrics.Flush(); err != nil {
			logger.Warn("metrics: flush", "error", err)
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
