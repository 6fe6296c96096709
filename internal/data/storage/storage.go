// Package storage persists the board state in a single key-value slot.
//
// A KV backend stores opaque bytes under a key; Repository encodes the
// board snapshot into that slot.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/penwyp/go-tally/internal/util"
)

// ErrNotFound is returned by KV.Get when the key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Backends lists every supported backend name.
var Backends = []string{BackendFile, BackendSQLite, BackendMySQL, BackendPostgres, BackendMemory}

// KV is a durable key-value slot store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	DataDir string // file and sqlite backends
	DSN     string // sqlite path override, mysql and postgres connection strings
}

// Open returns the KV for opts.Backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.DataDir)
	case BackendSQLite, BackendMySQL, BackendPostgres:
		if opts.Backend == BackendSQLite && opts.DSN == "" {
			if err := util.EnsureDir(opts.DataDir); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		return NewSQLStore(ctx, opts.Backend, sqlConnString(opts))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", opts.Backend)
	}
}
