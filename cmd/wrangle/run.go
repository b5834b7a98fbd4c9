package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"wrangle/internal/config"
	"wrangle/internal/datasource"
	"wrangle/internal/datasource/file"
	"wrangle/internal/datasource/objectstore"
	"wrangle/internal/naming"
	"wrangle/internal/parser"
	"wrangle/internal/preview"
	"wrangle/internal/schemagen"
	"wrangle/internal/storage"
	"wrangle/internal/wrangler"
)

// runOptions holds the per-invocation choices made on the command line.
type runOptions struct {
	list        bool
	preview     string
	head        int
	schemaPath  string
	schemaTable string
	// drop lists columns left out of the schema, by raw or canonical name.
	drop []string

	// command prefixes the preview commands printed by -list.
	command string
}

// newSourceFn is a test seam; production builds the source from config.
var newSourceFn = newSource

// newSource builds the datasource selected by s.Kind.
func newSource(s config.Source) (datasource.Source, error) {
	switch s.Kind {
	case config.SourceLocal:
		return file.NewDir(s.Local.Dir, s.Local.Pattern), nil
	case config.SourceS3:
		client, err := objectstore.NewS3Client(s.S3)
		if err != nil {
			return nil, err
		}
		return objectstore.NewBucket(client, s.S3.Bucket, s.S3.Prefix), nil
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", s.Kind)
	}
}

// run executes one invocation against the already validated pipeline p.
// Command output goes to stdout; logs go through slog.Default().
func run(ctx context.Context, p config.Pipeline, opts runOptions, stdout io.Writer) error {
	src, err := newSourceFn(p.Source)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	popts, err := parser.FromConfig(p.Parser)
	if err != nil {
		return err
	}
	pl := wrangler.New(src,
		wrangler.WithDispatcher(parser.NewDispatcher(popts)),
		wrangler.WithLogger(slog.Default()),
		wrangler.WithWorkers(p.Runtime.Workers),
		wrangler.WithJob(p.Job),
	)

	if opts.list {
		pairs, err := pl.ListKeys(ctx)
		if err != nil {
			return err
		}
		return preview.Boilerplate(stdout, opts.command, pairs)
	}

	res, err := pl.Run(ctx)
	if err != nil {
		return err
	}

	if err := exportTables(ctx, p, res.Tables); err != nil {
		return err
	}

	if opts.preview != "" {
		t, ok := res.Tables.Get(opts.preview)
		if !ok {
			return fmt.Errorf("preview: no table with key %q", opts.preview)
		}
		if err := preview.Info(stdout, opts.preview, t); err != nil {
			return err
		}
		if err := preview.Head(stdout, t, opts.head); err != nil {
			return err
		}
	}

	if opts.schemaPath != "" {
		key, err := schemaTable(res.Tables, opts.schemaTable)
		if err != nil {
			return err
		}
		t, _ := res.Tables.Get(key)
		if err := schemagen.Generate(schemagen.Features(t, naming.Columns(opts.drop)...), opts.schemaPath); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "JSON schema has been saved to %s\n", opts.schemaPath)
	}

	if opts.preview == "" && opts.schemaPath == "" {
		for _, key := range res.Tables.Keys() {
			fmt.Fprintln(stdout, key)
		}
	}
	return nil
}

// schemaTable picks the table for -schema: the requested key, or the only
// loaded table when no key was given.
func schemaTable(c *wrangler.Collection, key string) (string, error) {
	if key != "" {
		if _, ok := c.Get(key); !ok {
			return "", fmt.Errorf("schema: no table with key %q", key)
		}
		return key, nil
	}
	if c.Len() != 1 {
		return "", fmt.Errorf("schema: %d tables loaded; choose one with -schema-table", c.Len())
	}
	return c.Keys()[0], nil
}

// exportTables writes every loaded table to the configured storage backend.
func exportTables(ctx context.Context, p config.Pipeline, tables *wrangler.Collection) error {
	switch p.Storage.Kind {
	case "", "none":
		return nil
	}
	keys := tables.Keys()
	names, err := storage.TableNames(p.Storage.DB.TablePrefix, keys)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	repo, err := storage.New(ctx, storage.Config{Kind: p.Storage.Kind, DSN: p.Storage.DB.DSN})
	if err != nil {
		return err
	}
	defer repo.Close()

	for i, key := range keys {
		t, _ := tables.Get(key)
		name := names[i]
		n, err := storage.Export(ctx, repo, p.Job, name, t, p.Storage.DB.Replace)
		if err != nil {
			return err
		}
		slog.Info("table exported", "key", key, "table", name, "rows", n)
	}
	return nil
}
