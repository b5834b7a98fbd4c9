// Package postgres implements a Postgres-backed storage.Repository using
// pgx v5. Rows are loaded with the COPY protocol.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wrangle/internal/table"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN string // connection string for pgxpool
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository and returns a Close function for
// cleanup. The pool connects lazily; a ping verifies the DSN up front.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool}, pool.Close, nil
}

// EnsureTable creates name for cols, dropping an existing table first when
// replace is set.
func (r *Repository) EnsureTable(ctx context.Context, name string, cols []table.Column, replace bool) error {
	stmt, err := BuildCreateTableSQL(name, cols)
	if err != nil {
		return err
	}
	if replace {
		if err := r.Exec(ctx, "DROP TABLE IF EXISTS "+splitFQN(name).Sanitize()); err != nil {
			return err
		}
	}
	return r.Exec(ctx, stmt)
}

// CopyFrom loads rows into name with COPY.
func (r *Repository) CopyFrom(ctx context.Context, name string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, splitFQN(name), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("postgres: copy: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// Exec implements storage.Repository.Exec for Postgres.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}
