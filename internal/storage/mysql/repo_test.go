package mysql

import (
	"context"
	"os"
	"strings"
	"testing"

	gddl "rewardsetl/internal/ddl"
	"rewardsetl/internal/schema"
	"rewardsetl/internal/storage"
)

// Not parallel: it swaps the package-level hook.
func TestMySQLStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "mysql", DSN: "u:p@tcp(h:3306)/db", BatchSize: 7})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotCfg.DSN != "u:p@tcp(h:3306)/db" || gotCfg.BatchSize != 7 {
		t.Fatalf("hook cfg = %+v", gotCfg)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close did not invoke closeFn")
	}
}

func TestNormalizeDSN(t *testing.T) {
	t.Parallel()

	got, err := NormalizeDSN("user:pw@tcp(db:3306)/rewards")
	if err != nil {
		t.Fatalf("NormalizeDSN: %v", err)
	}
	if !strings.Contains(got, "parseTime=true") {
		t.Fatalf("normalized DSN %q lacks parseTime=true", got)
	}
	if !strings.HasPrefix(got, "user:pw@tcp(db:3306)/rewards") {
		t.Fatalf("normalized DSN %q lost its address", got)
	}

	if _, err := NormalizeDSN("not a dsn"); err == nil {
		t.Fatalf("expected error for malformed DSN")
	}
}

func TestInsertBatch(t *testing.T) {
	t.Parallel()

	q, args := insertBatch("dim_brands", []string{"brand_id", "top_brand"}, [][]any{{"a", true}, {"b", nil}})
	want := "INSERT INTO `dim_brands` (`brand_id`, `top_brand`) VALUES (?, ?), (?, ?)"
	if q != want {
		t.Fatalf("query = %q, want %q", q, want)
	}
	if len(args) != 4 || args[0] != "a" || args[1] != true || args[3] != nil {
		t.Fatalf("args = %#v", args)
	}
}

// TestReplaceTable_Integration runs only when TEST_MYSQL_DSN is set.
func TestReplaceTable_Integration(t *testing.T) {
	t.Parallel()

	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("skipping integration test: set TEST_MYSQL_DSN to run")
	}
	ctx := context.Background()
	repo, closeFn, err := NewRepository(ctx, Config{DSN: dsn, BatchSize: 2})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	defer closeFn()

	def := gddl.TableDef{FQN: "__rewardsetl_replace_test", Columns: []gddl.ColumnDef{
		{Name: "id", Type: schema.String, Nullable: true},
		{Name: "amount", Type: schema.Float, Nullable: true},
	}}
	rows := [][]any{{"a", 1.0}, {"b", nil}, {"c", 2.5}}
	for i := 0; i < 2; i++ {
		n, err := repo.ReplaceTable(ctx, def, rows)
		if err != nil || n != 3 {
			t.Fatalf("ReplaceTable #%d = %d, %v; want 3, nil", i+1, n, err)
		}
	}
	_, _ = repo.db.ExecContext(ctx, "DROP TABLE IF EXISTS `__rewardsetl_replace_test`")
}
