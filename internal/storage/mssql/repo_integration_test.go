//go:build integration

package mssql

import (
	"context"
	"os"
	"testing"
	"time"

	gddl "rewardsetl/internal/ddl"
	"rewardsetl/internal/schema"
)

// getTestDSN reads the MSSQL_TEST_DSN environment variable.
// If it is empty, the caller should skip the test.
func getTestDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("MSSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MSSQL_TEST_DSN not set; skipping MSSQL integration tests")
	}
	return dsn
}

// TestReplaceTableIntegration replaces the same table twice against a real
// SQL Server and checks the row count each time.
func TestReplaceTableIntegration(t *testing.T) {
	dsn := getTestDSN(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo, closeFn, err := NewRepository(ctx, Config{DSN: dsn, BatchSize: 2})
	if err != nil {
		t.Fatalf("NewRepository() error = %v, want nil", err)
	}
	defer closeFn()

	def := gddl.TableDef{
		FQN: "dbo.repo_replace_test",
		Columns: []gddl.ColumnDef{
			{Name: "id", Type: schema.String, Nullable: true},
			{Name: "price", Type: schema.Float, Nullable: true},
			{Name: "at", Type: schema.Timestamp, Nullable: true},
			{Name: "ok", Type: schema.Boolean, Nullable: true},
		},
	}
	rows := [][]any{
		{"alice", 1.25, time.UnixMilli(1609459200000).UTC(), true},
		{"bob", nil, nil, nil},
		{"carol", 3.0, nil, false},
	}

	for i := 0; i < 2; i++ {
		n, err := repo.ReplaceTable(ctx, def, rows)
		if err != nil {
			t.Fatalf("ReplaceTable #%d error = %v", i+1, err)
		}
		if n != int64(len(rows)) {
			t.Fatalf("ReplaceTable #%d inserted = %d, want %d", i+1, n, len(rows))
		}
	}

	var count int
	if err := repo.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM [dbo].[repo_replace_test]").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != len(rows) {
		t.Fatalf("count = %d, want %d", count, len(rows))
	}
	_, _ = repo.db.ExecContext(ctx, "DROP TABLE IF EXISTS [dbo].[repo_replace_test]")
}
