// Package mssql implements storage.Repository for Microsoft SQL Server.
//
// Upserts deliberately avoid MERGE: the conflict policies here reduce to the
// simpler guarded-insert and update-then-insert statements, which behave
// predictably under the per-file transaction this job runs in.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/infinit3labs/udacity-dend-proj1/internal/schema"
	"github.com/infinit3labs/udacity-dend-proj1/internal/storage"
)

// Repo implements storage.Repository for SQL Server.
type Repo struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

func (r *Repo) EnsureTables(ctx context.Context, tables []schema.TableSpec) error {
	for _, t := range tables {
		ddl, err := buildCreateTableSQL(t)
		if err != nil {
			return err
		}
		if _, err := r.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}
	return nil
}

func (r *Repo) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx}, nil
}

// Tx wraps one SQL Server transaction, the commit boundary for one file.
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Upsert(ctx context.Context, spec schema.TableSpec, row []any) error {
	if len(row) != len(spec.Columns) {
		return fmt.Errorf("table %s: row has %d values, want %d", spec.Name, len(row), len(spec.Columns))
	}
	q, argOrder, err := buildUpsertSQL(spec)
	if err != nil {
		return err
	}
	row = storage.BindRow(row)
	args := make([]any, len(argOrder))
	for i, idx := range argOrder {
		args[i] = row[idx]
	}
	_, err = t.tx.ExecContext(ctx, q, args...)
	return err
}

func (t *Tx) ResolvePlay(ctx context.Context, lk schema.PlayLookup, title, artist string, duration float64) (*string, *string, error) {
	var songID, artistID string
	err := t.tx.QueryRowContext(ctx, buildResolveSQL(lk), title, artist, duration).Scan(&songID, &artistID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &songID, &artistID, nil
}

func (t *Tx) Commit(ctx context.Context) error   { return t.tx.Commit() }
func (t *Tx) Rollback(ctx context.Context) error { return t.tx.Rollback() }
