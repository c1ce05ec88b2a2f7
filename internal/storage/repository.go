// Package storage contains the storage-agnostic sink contract, the backend
// registry, and the Sink that turns pipeline tables into full-table replaces.
//
// Backends (postgres, sqlite, mssql, mysql) register a Factory at init time;
// import rewardsetl/internal/storage/all to enable all of them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"rewardsetl/internal/ddl"
)

// ErrSink matches every connection or write failure reported by a sink.
var ErrSink = errors.New("sink error")

// Repository is the minimal contract a backend implements.
type Repository interface {
	// ReplaceTable discards the table named by def (if present), recreates it
	// from def, and bulk-loads rows aligned to def's column order. It returns
	// the number of rows written.
	ReplaceTable(ctx context.Context, def ddl.TableDef, rows [][]any) (int64, error)

	// Close releases the connection or pool.
	Close()
}

// Config selects and parameterizes a backend.
type Config struct {
	Kind      string // "postgres", "sqlite", "mssql", "mysql"
	DSN       string // backend-specific connection string
	BatchSize int    // rows per INSERT batch for backends without a bulk API
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register registers (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = f
}

// ListKinds returns the registered kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens a Repository for cfg.Kind. Connection failures wrap ErrSink.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	f, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	repo, err := f(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrSink, cfg.Kind, err)
	}
	return repo, nil
}
