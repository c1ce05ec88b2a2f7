// Package ddl contains SQLite-specific helpers for generating DDL.
//
// SQLite types are affinities, so the mapping is deliberately small.
package ddl

import (
	"strings"

	gddl "rewardsetl/internal/ddl"
	"rewardsetl/internal/schema"
)

// MapType maps a logical column type into a SQLite column type.
//   - integer   -> INTEGER
//   - boolean   -> INTEGER (0/1)
//   - float     -> REAL
//   - timestamp -> TIMESTAMP (stored as text; the driver parses it back into
//     time.Time because of the declared type)
//   - others    -> TEXT
func MapType(t schema.ColumnType) string {
	switch t {
	case schema.Integer, schema.Boolean:
		return "INTEGER"
	case schema.Float:
		return "REAL"
	case schema.Timestamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// QuoteIdent double-quotes an identifier, escaping embedded quotes.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// Dialect renders generic DDL for SQLite.
var Dialect = gddl.Dialect{Quote: QuoteIdent, MapType: MapType}
