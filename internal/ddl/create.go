// Package ddl defines a small, backend-agnostic model for SQL DDL and renders
// the CREATE/DROP statements used by full-table replaces.
//
// Backends supply a Dialect (identifier quoting + logical type mapping); the
// statement shapes themselves are shared.
package ddl

import (
	"fmt"
	"strings"

	"rewardsetl/internal/schema"
)

// Dialect adapts rendering to one SQL backend.
type Dialect struct {
	// Quote quotes a single identifier segment.
	Quote func(ident string) string
	// MapType maps a logical column type to the backend SQL type.
	MapType func(t schema.ColumnType) string
}

// QuoteFQN quotes a possibly schema-qualified name segment by segment:
// public.t → "public"."t".
func (d Dialect) QuoteFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	for i, p := range parts {
		parts[i] = d.Quote(p)
	}
	return strings.Join(parts, ".")
}

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef:
//
//	CREATE TABLE <FQN> (
//	  <col> <type> [NOT NULL],
//	  ...,
//	  [PRIMARY KEY (<pk-cols>)]
//	);
func BuildCreateTableSQL(t TableDef, d Dialect) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns)+1)
	var pks []string

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := d.MapType(c.Type)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s: no SQL type for %q", name, c.Type)
		}

		var sb strings.Builder
		sb.WriteString(d.Quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, d.Quote(name))
		}
	}
	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", d.QuoteFQN(fqn), strings.Join(cols, ",\n  ")), nil
}

// BuildDropTableSQL renders DROP TABLE IF EXISTS, understood by every
// supported backend.
func BuildDropTableSQL(fqn string, d Dialect) (string, error) {
	fqn = strings.TrimSpace(fqn)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", d.QuoteFQN(fqn)), nil
}
