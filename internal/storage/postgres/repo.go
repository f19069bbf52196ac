// Package postgres implements storage.Repository on a pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/infinit3labs/udacity-dend-proj1/internal/schema"
	"github.com/infinit3labs/udacity-dend-proj1/internal/storage"
)

// Repo implements storage.Repository for Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

// New opens a pgx pool for cfg.DSN and verifies connectivity.
func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Repo{pool: pool}, nil
}

func (r *Repo) Close() { r.pool.Close() }

// EnsureTables creates every target table with create-if-not-exists
// semantics, so startup stays idempotent across re-runs.
func (r *Repo) EnsureTables(ctx context.Context, tables []schema.TableSpec) error {
	for _, t := range tables {
		ddl, err := buildCreateTableSQL(t)
		if err != nil {
			return err
		}
		if _, err := r.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}
	return nil
}

func (r *Repo) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// Tx wraps one pgx transaction, the commit boundary for one source file.
type Tx struct {
	tx pgx.Tx
}

func (t *Tx) Upsert(ctx context.Context, spec schema.TableSpec, row []any) error {
	sql, err := buildUpsertSQL(spec)
	if err != nil {
		return err
	}
	if len(row) != len(spec.Columns) {
		return fmt.Errorf("table %s: row has %d values, want %d", spec.Name, len(row), len(spec.Columns))
	}
	_, err = t.tx.Exec(ctx, sql, storage.BindRow(row)...)
	return err
}

func (t *Tx) ResolvePlay(ctx context.Context, lk schema.PlayLookup, title, artist string, duration float64) (*string, *string, error) {
	var songID, artistID string
	err := t.tx.QueryRow(ctx, buildResolveSQL(lk), title, artist, duration).Scan(&songID, &artistID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &songID, &artistID, nil
}

func (t *Tx) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *Tx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }
