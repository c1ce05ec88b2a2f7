// Package postgres implements a Postgres repository using pgx v5. A table is
// replaced inside one transaction: DROP, CREATE, then COPY in batches.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	gddl "rewardsetl/internal/ddl"
	"rewardsetl/internal/storage"
	pgddl "rewardsetl/internal/storage/postgres/ddl"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN       string // connection string for pgxpool
	BatchSize int    // rows per COPY; storage.DefaultBatchSize when <= 0
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository opens a pool, verifies it with a ping, and returns a Close
// function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { pool.Close() }
	return &Repository{pool: pool, cfg: cfg}, close, nil
}

// ReplaceTable drops and recreates def.FQN and copies rows into it. Nothing
// is visible to other sessions until the transaction commits.
func (r *Repository) ReplaceTable(ctx context.Context, def gddl.TableDef, rows [][]any) (int64, error) {
	drop, err := gddl.BuildDropTableSQL(def.FQN, pgddl.Dialect)
	if err != nil {
		return 0, err
	}
	create, err := gddl.BuildCreateTableSQL(def, pgddl.Dialect)
	if err != nil {
		return 0, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	// Rollback after Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, drop); err != nil {
		return 0, fmt.Errorf("drop %s: %w", def.FQN, pgErr(err))
	}
	if _, err := tx.Exec(ctx, create); err != nil {
		return 0, fmt.Errorf("create %s: %w", def.FQN, pgErr(err))
	}

	ident := splitFQN(def.FQN)
	batch := r.cfg.BatchSize
	if batch <= 0 {
		batch = storage.DefaultBatchSize
	}
	n, err := storage.LoadBatches(ctx, def.FQN, def.ColumnNames(), rows, batch,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return tx.CopyFrom(ctx, ident, columns, pgx.CopyFromRows(rows))
		})
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", def.FQN, pgErr(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	log.Printf("postgres: table=%s replaced rows=%d", def.FQN, n)
	return n, nil
}

// pgErr surfaces the server-side detail of a *pgconn.PgError, which the
// default message omits.
func pgErr(err error) error {
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Detail != "" {
		return fmt.Errorf("%w (%s, SQLSTATE %s)", err, pe.Detail, pe.SQLState())
	}
	return err
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"}.
// If no dot is present, returns {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
