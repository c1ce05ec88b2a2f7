// Package mssql implements a Microsoft SQL Server repository using the
// go-mssqldb bulk copy API. A table is replaced inside one transaction:
// DROP, CREATE, then bulk copy in batches.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	gddl "rewardsetl/internal/ddl"
	"rewardsetl/internal/storage"
	msddl "rewardsetl/internal/storage/mssql/ddl"
)

// Config holds MSSQL repository configuration.
type Config struct {
	DSN       string
	BatchSize int // rows per bulk copy; storage.DefaultBatchSize when <= 0
}

// Repository is an MSSQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	// Validate DSN early to fail fast on obvious mistakes.
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, close, nil
}

// ReplaceTable drops and recreates def.FQN and bulk-copies rows into it.
func (r *Repository) ReplaceTable(ctx context.Context, def gddl.TableDef, rows [][]any) (int64, error) {
	drop, err := gddl.BuildDropTableSQL(def.FQN, msddl.Dialect)
	if err != nil {
		return 0, err
	}
	create, err := gddl.BuildCreateTableSQL(def, msddl.Dialect)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	if _, err := tx.ExecContext(ctx, drop); err != nil {
		rollback()
		return 0, fmt.Errorf("drop %s: %w", def.FQN, err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		rollback()
		return 0, fmt.Errorf("create %s: %w", def.FQN, err)
	}

	batch := r.cfg.BatchSize
	if batch <= 0 {
		batch = storage.DefaultBatchSize
	}
	target := msddl.Dialect.QuoteFQN(def.FQN)
	n, err := storage.LoadBatches(ctx, def.FQN, def.ColumnNames(), rows, batch,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return bulkCopy(ctx, tx, target, columns, rows)
		})
	if err != nil {
		rollback()
		return 0, fmt.Errorf("bulk copy into %s: %w", def.FQN, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	log.Printf("mssql: table=%s replaced rows=%d", def.FQN, n)
	return n, nil
}

// bulkCopy sends one batch through a CopyIn statement and returns the row
// count reported by the final flush.
func bulkCopy(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) (int64, error) {
	stmt, err := tx.PrepareContext(ctx, mssql.CopyIn(table, mssql.BulkOptions{}, columns...))
	if err != nil {
		return 0, fmt.Errorf("prepare bulk: %w", err)
	}
	for i := range rows {
		if _, err := stmt.ExecContext(ctx, rows[i]...); err != nil {
			_ = stmt.Close()
			return 0, fmt.Errorf("bulk row %d: %w", i, err)
		}
	}
	res, err := stmt.ExecContext(ctx)
	if cerr := stmt.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("bulk finalize: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
