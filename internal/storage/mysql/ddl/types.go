// Package ddl contains MySQL-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "rewardsetl/internal/ddl"
	"rewardsetl/internal/schema"
)

// MapType maps a logical column type into a MySQL column type. Timestamps
// keep millisecond precision.
func MapType(t schema.ColumnType) string {
	switch t {
	case schema.Integer:
		return "BIGINT"
	case schema.Float:
		return "DOUBLE"
	case schema.Timestamp:
		return "DATETIME(3)"
	case schema.Boolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// QuoteIdent quotes a MySQL identifier with backticks, escaping embedded ones.
func QuoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// Dialect renders generic DDL for MySQL.
var Dialect = gddl.Dialect{Quote: QuoteIdent, MapType: MapType}
