// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. SQLite has no bulk-load API like Postgres COPY, so rows go
// through a prepared INSERT inside the replacing transaction.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	gddl "rewardsetl/internal/ddl"
	"rewardsetl/internal/storage"
	sqliteddl "rewardsetl/internal/storage/sqlite/ddl"
)

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:rewards.db?_pragma=busy_timeout(5000)"
	//   "rewards.db"
	//   ":memory:"
	DSN string

	// BatchSize is the number of rows between progress logs.
	BatchSize int
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One writer. Also keeps ":memory:" pinned to a single database.
	db.SetMaxOpenConns(1)

	// Apply a basic ping with context to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// ReplaceTable drops and recreates def.FQN and inserts rows, all in one
// transaction.
func (r *Repository) ReplaceTable(ctx context.Context, def gddl.TableDef, rows [][]any) (int64, error) {
	drop, err := gddl.BuildDropTableSQL(def.FQN, sqliteddl.Dialect)
	if err != nil {
		return 0, err
	}
	create, err := gddl.BuildCreateTableSQL(def, sqliteddl.Dialect)
	if err != nil {
		return 0, err
	}
	columns := def.ColumnNames()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	rollback := func() { _ = tx.Rollback() }

	if _, err := tx.ExecContext(ctx, drop); err != nil {
		rollback()
		return 0, fmt.Errorf("sqlite: drop %s: %w", def.FQN, err)
	}
	if _, err := tx.ExecContext(ctx, create); err != nil {
		rollback()
		return 0, fmt.Errorf("sqlite: create %s: %w", def.FQN, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(def.FQN, columns))
	if err != nil {
		rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	batch := r.cfg.BatchSize
	if batch <= 0 {
		batch = storage.DefaultBatchSize
	}
	n, err := storage.LoadBatches(ctx, def.FQN, columns, rows, batch,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			var inserted int64
			for _, row := range rows {
				if len(row) != len(columns) {
					return inserted, fmt.Errorf("row length %d != columns length %d", len(row), len(columns))
				}
				if _, err := stmt.ExecContext(ctx, row...); err != nil {
					return inserted, err
				}
				inserted++
			}
			return inserted, nil
		})
	if err != nil {
		rollback()
		return 0, fmt.Errorf("sqlite: insert into %s: %w", def.FQN, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	log.Printf("sqlite: table=%s replaced rows=%d", def.FQN, n)
	return n, nil
}

// insertSQL builds INSERT INTO <table> (<cols>) VALUES (?, ?, ...).
func insertSQL(table string, columns []string) string {
	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = sqliteddl.QuoteIdent(c)
		placeholders[i] = "?"
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		sqliteddl.Dialect.QuoteFQN(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)
}
