// Package mysql implements a MySQL repository on go-sql-driver/mysql.
//
// MySQL commits DDL implicitly, so DROP and CREATE run on their own and only
// the batched multi-row INSERTs share a transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	gddl "rewardsetl/internal/ddl"
	"rewardsetl/internal/storage"
	myddl "rewardsetl/internal/storage/mysql/ddl"
)

// Config holds MySQL repository configuration.
type Config struct {
	DSN       string // go-sql-driver DSN, e.g. user:pass@tcp(host:3306)/db
	BatchSize int    // rows per INSERT; storage.DefaultBatchSize when <= 0
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NormalizeDSN parses dsn and forces the options the loader relies on:
// parseTime for DATETIME round trips and UTC as the session location.
func NormalizeDSN(dsn string) (string, error) {
	mc, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	mc.ParseTime = true
	mc.Loc = time.UTC
	return mc.FormatDSN(), nil
}

// NewRepository constructs a Repository and returns a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	dsn, err := NormalizeDSN(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping: %w", err)
	}
	close := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, close, nil
}

// ReplaceTable drops and recreates def.FQN, then inserts rows in batches
// inside one transaction.
func (r *Repository) ReplaceTable(ctx context.Context, def gddl.TableDef, rows [][]any) (int64, error) {
	drop, err := gddl.BuildDropTableSQL(def.FQN, myddl.Dialect)
	if err != nil {
		return 0, err
	}
	create, err := gddl.BuildCreateTableSQL(def, myddl.Dialect)
	if err != nil {
		return 0, err
	}
	if _, err := r.db.ExecContext(ctx, drop); err != nil {
		return 0, fmt.Errorf("drop %s: %w", def.FQN, err)
	}
	if _, err := r.db.ExecContext(ctx, create); err != nil {
		return 0, fmt.Errorf("create %s: %w", def.FQN, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	batch := r.cfg.BatchSize
	if batch <= 0 {
		batch = storage.DefaultBatchSize
	}
	n, err := storage.LoadBatches(ctx, def.FQN, def.ColumnNames(), rows, batch,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			query, args := insertBatch(def.FQN, columns, rows)
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return 0, err
			}
			return res.RowsAffected()
		})
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("insert into %s: %w", def.FQN, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	log.Printf("mysql: table=%s replaced rows=%d", def.FQN, n)
	return n, nil
}

// insertBatch builds one multi-row INSERT and its flattened arguments.
func insertBatch(table string, columns []string, rows [][]any) (string, []any) {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myddl.QuoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", myddl.Dialect.QuoteFQN(table), strings.Join(quoted, ", "))
	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(tuple)
		args = append(args, row...)
	}
	return sb.String(), args
}
