package ddl

import (
	"testing"

	gddl "rewardsetl/internal/ddl"
	"rewardsetl/internal/schema"
)

// TestMapType verifies that MapType maps logical types to the expected
// SQL Server column types.
func TestMapType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind schema.ColumnType
		want string
	}{
		{schema.String, "NVARCHAR(MAX)"},
		{schema.Integer, "BIGINT"},
		{schema.Float, "FLOAT"},
		{schema.Timestamp, "DATETIME2"},
		{schema.Boolean, "BIT"},
		{"", "NVARCHAR(MAX)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()
			if got := MapType(tt.kind); got != tt.want {
				t.Fatalf("MapType(%q) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestDialect_DropAndCreate(t *testing.T) {
	t.Parallel()

	drop, err := gddl.BuildDropTableSQL("dbo.dim_brands", Dialect)
	if err != nil {
		t.Fatalf("BuildDropTableSQL: %v", err)
	}
	if want := "DROP TABLE IF EXISTS [dbo].[dim_brands];"; drop != want {
		t.Fatalf("drop = %q, want %q", drop, want)
	}

	create, err := gddl.BuildCreateTableSQL(gddl.TableDef{
		FQN:     "dbo.dim_brands",
		Columns: []gddl.ColumnDef{{Name: "top]brand", Type: schema.Boolean, Nullable: true}},
	}, Dialect)
	if err != nil {
		t.Fatalf("BuildCreateTableSQL: %v", err)
	}
	if want := "CREATE TABLE [dbo].[dim_brands] (\n  [top]]brand] BIT\n);"; create != want {
		t.Fatalf("create = %q, want %q", create, want)
	}
}
