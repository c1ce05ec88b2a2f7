package transformer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/zeebo/xxh3"
)

// Table is a column-ordered, row-major dataset. Every row has exactly
// len(Columns) cells; a nil cell is a null.
type Table struct {
	Columns []string
	Rows    [][]any
}

// NewTable returns an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column's cells.
func (t *Table) Column(name string) ([]any, bool) {
	i := t.Index(name)
	if i < 0 {
		return nil, false
	}
	out := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out, true
}

// Append adds a row. It panics if the row width does not match the columns,
// which is always a programming error.
func (t *Table) Append(row ...any) {
	if len(row) != len(t.Columns) {
		panic(fmt.Sprintf("transformer: row has %d cells, table has %d columns", len(row), len(t.Columns)))
	}
	t.Rows = append(t.Rows, row)
}

// Drop returns a new table without the named columns. Unknown names are
// ignored.
func (t *Table) Drop(names ...string) *Table {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	keep := make([]int, 0, len(t.Columns))
	out := &Table{}
	for i, c := range t.Columns {
		if _, ok := drop[c]; ok {
			continue
		}
		keep = append(keep, i)
		out.Columns = append(out.Columns, c)
	}
	out.Rows = make([][]any, len(t.Rows))
	for r, row := range t.Rows {
		nr := make([]any, len(keep))
		for j, i := range keep {
			nr[j] = row[i]
		}
		out.Rows[r] = nr
	}
	return out
}

// Fingerprint returns an xxh3 digest of the column names and every cell.
// Two tables with equal fingerprints have identical columns and cell values,
// which makes full rebuilds easy to compare across runs.
func (t *Table) Fingerprint() uint64 {
	h := xxh3.New()
	for _, c := range t.Columns {
		_, _ = h.WriteString(c)
		_, _ = h.Write([]byte{0x1f})
	}
	_, _ = h.Write([]byte{0x1e})
	for _, row := range t.Rows {
		for _, v := range row {
			_, _ = h.WriteString(canonical(v))
			_, _ = h.Write([]byte{0x1f})
		}
		_, _ = h.Write([]byte{0x1e})
	}
	return h.Sum64()
}

// canonical renders a cell with a type tag so that, e.g., the string "1" and
// the number 1 hash differently.
func canonical(v any) string {
	switch x := v.(type) {
	case nil:
		return "\x00"
	case string:
		return "s:" + x
	case json.Number:
		return "n:" + x.String()
	case float64:
		if math.IsNaN(x) {
			return "f:NaN"
		}
		return "f:" + strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return "i:" + strconv.FormatInt(x, 10)
	case int:
		return "i:" + strconv.Itoa(x)
	case bool:
		return "b:" + strconv.FormatBool(x)
	case time.Time:
		return "t:" + x.UTC().Format(time.RFC3339Nano)
	default:
		// Arrays and objects: encoding/json sorts map keys, so this is stable.
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("?:%v", x)
		}
		return "j:" + string(b)
	}
}
