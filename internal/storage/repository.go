// Package storage contains the backend-agnostic export contract: a
// Repository that can create a table for a column list and bulk-load rows
// into it, plus a small registry of backend factories.
//
// Backends register themselves from init; import
// wrangle/internal/storage/all to enable every built-in backend.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"wrangle/internal/metrics"
	"wrangle/internal/naming"
	"wrangle/internal/table"
)

// Repository is implemented by every export backend.
type Repository interface {
	// EnsureTable creates name with one column per entry of cols. With
	// replace set, an existing table is dropped first.
	EnsureTable(ctx context.Context, name string, cols []table.Column, replace bool) error
	// CopyFrom bulk-inserts rows aligned to columns and returns the number of
	// rows written.
	CopyFrom(ctx context.Context, name string, columns []string, rows [][]any) (int64, error)
	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Kind string
	DSN  string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds or replaces the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository of cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds in sorted order.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// TableName derives a destination table name from a collection key. Path
// separators become underscores so that object keys stay readable.
func TableName(prefix, key string) string {
	return prefix + naming.Short(strings.ReplaceAll(key, "/", "_"))
}

// TableNameConflictError reports two collection keys that map onto the same
// destination table.
type TableNameConflictError struct {
	Table string
	Key   string
	First string
}

func (e *TableNameConflictError) Error() string {
	return fmt.Sprintf("keys %q and %q both export to table %q", e.First, e.Key, e.Table)
}

// TableNames maps every key to its destination table, in key order. Keys
// that fold onto one table name fail the whole mapping so that no export
// overwrites or appends to another file's table.
func TableNames(prefix string, keys []string) ([]string, error) {
	names := make([]string, len(keys))
	seen := make(map[string]string, len(keys))
	for i, key := range keys {
		name := TableName(prefix, key)
		if first, ok := seen[name]; ok {
			return nil, &TableNameConflictError{Table: name, Key: key, First: first}
		}
		seen[name] = key
		names[i] = name
	}
	return names, nil
}

// Export creates the destination table for t and loads every row into it.
// job labels the recorded metrics.
func Export(ctx context.Context, repo Repository, job, name string, t *table.Table, replace bool) (int64, error) {
	start := time.Now()
	n, err := export(ctx, repo, name, t, replace)
	metrics.RecordStep(job, "export", err, time.Since(start))
	metrics.RecordRows(job, "exported", n)
	return n, err
}

func export(ctx context.Context, repo Repository, name string, t *table.Table, replace bool) (int64, error) {
	if len(t.Columns) == 0 {
		return 0, fmt.Errorf("export %s: table has no columns", name)
	}
	if err := repo.EnsureTable(ctx, name, t.Columns, replace); err != nil {
		return 0, fmt.Errorf("export %s: %w", name, err)
	}
	n, err := repo.CopyFrom(ctx, name, t.Names(), t.Rows)
	if err != nil {
		return n, fmt.Errorf("export %s: %w", name, err)
	}
	return n, nil
}
