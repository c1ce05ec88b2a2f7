// Package ddl contains MSSQL-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "rewardsetl/internal/ddl"
	"rewardsetl/internal/schema"
)

// MapType maps a logical column type into a SQL Server column type. Unknown
// or empty types fall back to NVARCHAR(MAX).
func MapType(t schema.ColumnType) string {
	switch t {
	case schema.Integer:
		return "BIGINT"
	case schema.Float:
		return "FLOAT"
	case schema.Timestamp:
		return "DATETIME2"
	case schema.Boolean:
		return "BIT"
	default:
		return "NVARCHAR(MAX)"
	}
}

// QuoteIdent quotes a SQL Server identifier using [brackets], escaping ].
func QuoteIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// Dialect renders generic DDL for SQL Server (2016+ for DROP TABLE IF EXISTS).
var Dialect = gddl.Dialect{Quote: QuoteIdent, MapType: MapType}
