// Package storage defines the backend-agnostic writer contract and the
// factory registry that backends register into from init().
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/infinit3labs/udacity-dend-proj1/internal/schema"
)

// Config is the minimal configuration needed to create a repository.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Repository is a backend-agnostic handle to the target store.
//
// IMPORTANT: the interface is intentionally minimal: the operations the
// file-batch driver needs, nothing more. Each backend implements the
// semantics in its own idiomatic way (Postgres ON CONFLICT, SQL Server
// guarded insert/update, etc).
type Repository interface {
	// Close releases backend resources. Treat as "call once" at shutdown.
	Close()

	// EnsureTables creates the target tables if they do not exist yet,
	// translating each TableSpec into backend DDL. Idempotent.
	EnsureTables(ctx context.Context, tables []schema.TableSpec) error

	// Begin opens the transaction for one source file. Every row extracted
	// from that file is written through the returned Tx and made durable by a
	// single Commit; the transaction is the sole unit of atomicity.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one file's transaction.
//
// Errors from the store (constraint violations on non-upsert paths,
// connectivity loss) are surfaced unmodified; there is no retry here.
type Tx interface {
	// Upsert writes one row under the table's conflict policy. row values
	// align with spec.Columns; nil binds as SQL NULL.
	Upsert(ctx context.Context, spec schema.TableSpec, row []any) error

	// ResolvePlay looks up the song/artist pair exactly matching
	// (title, artist name, duration). A miss is expected, not an error: both
	// ids come back nil with a nil error.
	ResolvePlay(ctx context.Context, lk schema.PlayLookup, title, artist string, duration float64) (songID, artistID *string, err error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// ---- backend factories ----

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	factoryMu sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
//
// When to use:
//   - Call Register from an init() function in a backend package.
//
// Panics:
//   - If kind is empty, f is nil, or kind is already registered. Failing fast
//     avoids ambiguous backend selection.
func Register(kind string, f factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	factoryMu.RLock()
	f := factories[cfg.Kind]
	factoryMu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
