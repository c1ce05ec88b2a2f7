// Package ddl contains Postgres-specific helpers for generating DDL.
package ddl

import (
	"strings"

	gddl "rewardsetl/internal/ddl"
	"rewardsetl/internal/schema"
)

// MapType maps a logical column type to a Postgres SQL type.
//
//	string    -> TEXT
//	integer   -> BIGINT
//	float     -> DOUBLE PRECISION
//	timestamp -> TIMESTAMP
//	boolean   -> BOOLEAN
//
// Unknown types fall back to TEXT.
func MapType(t schema.ColumnType) string {
	switch t {
	case schema.Integer:
		return "BIGINT"
	case schema.Float:
		return "DOUBLE PRECISION"
	case schema.Timestamp:
		return "TIMESTAMP"
	case schema.Boolean:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// QuoteIdent quotes a single identifier segment for Postgres, e.g.:
//
//	QuoteIdent(`pcv`)        => `"pcv"`
//	QuoteIdent(`weird"name`) => `"weird""name"`
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// Dialect renders generic DDL for Postgres.
var Dialect = gddl.Dialect{Quote: QuoteIdent, MapType: MapType}
