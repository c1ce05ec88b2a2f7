package transformer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"rewardsetl/pkg/records"
)

// DefaultSep joins nested key paths into column names: {"cpg":{"$ref":"x"}}
// becomes column "cpg_$ref".
const DefaultSep = "_"

var (
	// ErrExplodePath is returned when a record has no array at the explode path.
	ErrExplodePath = errors.New("explode path")
	// ErrMetaConflict is returned when a carried parent field has the same
	// name as a column produced by the exploded children.
	ErrMetaConflict = errors.New("conflicting metadata name")
)

// FlattenOptions controls Flatten.
type FlattenOptions struct {
	// Path, when set, names the nested array to explode: one output row per
	// element. Multiple segments walk nested objects.
	Path []string

	// Meta lists top-level parent fields copied verbatim into every exploded
	// row. Ignored when Path is empty.
	Meta []string

	// Sep joins nested keys into column names. Defaults to DefaultSep.
	Sep string
}

// Flatten turns nested records into a flat table.
//
// Without a Path, each record becomes one row and every leaf reachable through
// nested objects becomes a column named by the joined key path. Arrays are
// leaves. Empty objects produce no column.
//
// With a Path, each element of the array found there becomes one row,
// flattened the same way, with the Meta fields of its parent appended. An
// empty array yields no rows; a missing or non-array value is an error.
//
// Columns are the union of those seen, in first-seen order (keys within an
// object are visited sorted); meta columns come last. Missing cells are nil.
func Flatten(recs []records.Record, opt FlattenOptions) (*Table, error) {
	sep := opt.Sep
	if sep == "" {
		sep = DefaultSep
	}

	b := newBuilder()
	if len(opt.Path) == 0 {
		for _, r := range recs {
			row := make(map[string]any, len(r))
			flattenInto(row, "", r, sep)
			b.add(row)
		}
		return b.table(), nil
	}

	pathName := strings.Join(opt.Path, ".")
	leaf := opt.Path[len(opt.Path)-1]

	var metas [][]any
	for i, r := range recs {
		v, ok := r.Lookup(opt.Path...)
		if !ok {
			return nil, fmt.Errorf("%w: record %d: %q not found", ErrExplodePath, i, pathName)
		}
		items, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: record %d: %q is %T, not an array", ErrExplodePath, i, pathName, v)
		}

		meta := make([]any, len(opt.Meta))
		for j, m := range opt.Meta {
			meta[j] = r[m]
		}

		for _, it := range items {
			row := make(map[string]any)
			if obj, isObj := it.(map[string]any); isObj {
				flattenInto(row, "", obj, sep)
			} else {
				row[leaf] = it
			}
			b.add(row)
			metas = append(metas, meta)
		}
	}

	t := b.table()
	for _, m := range opt.Meta {
		if t.Index(m) >= 0 {
			return nil, fmt.Errorf("%w %q: exploded rows already have that column", ErrMetaConflict, m)
		}
	}
	t.Columns = append(t.Columns, opt.Meta...)
	for r := range t.Rows {
		t.Rows[r] = append(t.Rows[r], metas[r]...)
	}
	return t, nil
}

// flattenInto writes every leaf of obj into row under prefix-joined names.
func flattenInto(row map[string]any, prefix string, obj map[string]any, sep string) {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + sep + k
		}
		if child, ok := obj[k].(map[string]any); ok {
			flattenInto(row, name, child, sep)
			continue
		}
		row[name] = obj[k]
	}
}

// builder accumulates sparse rows and the union of their columns.
type builder struct {
	columns []string
	index   map[string]int
	rows    []map[string]any
}

func newBuilder() *builder {
	return &builder{index: make(map[string]int)}
}

func (b *builder) add(row map[string]any) {
	// Visit in sorted order so first-seen column order is deterministic.
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := b.index[k]; !ok {
			b.index[k] = len(b.columns)
			b.columns = append(b.columns, k)
		}
	}
	b.rows = append(b.rows, row)
}

func (b *builder) table() *Table {
	t := &Table{Columns: b.columns, Rows: make([][]any, len(b.rows))}
	for r, row := range b.rows {
		cells := make([]any, len(b.columns))
		for k, v := range row {
			cells[b.index[k]] = v
		}
		t.Rows[r] = cells
	}
	return t
}
