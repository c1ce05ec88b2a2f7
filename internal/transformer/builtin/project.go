// Package builtin contains the reusable reshaping steps applied to flattened
// tables: column projection and type coercion.
package builtin

import (
	"errors"
	"fmt"
	"strings"

	"rewardsetl/internal/transformer"
)

// ErrMissingColumn matches every *MissingColumnError via errors.Is.
var ErrMissingColumn = errors.New("missing column")

// MissingColumnError reports declared columns that the input table lacks. It
// is fatal: the fixed schema and the data disagree.
type MissingColumnError struct {
	Columns   []string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing column(s) %s (have %d columns: %s)",
		strings.Join(e.Columns, ", "), len(e.Available), strings.Join(e.Available, ", "))
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// Project selects Order from the input, in that order, then renames the
// selected columns through Rename. Names absent from Rename keep their name.
type Project struct {
	Order  []string
	Rename map[string]string
}

// Apply implements transformer.Transformer.
func (p Project) Apply(t *transformer.Table) (*transformer.Table, error) {
	return ProjectColumns(t, p.Order, p.Rename)
}

// ProjectColumns returns a new table with exactly the columns in order,
// renamed per rename. Every name in order must exist in t; otherwise a
// *MissingColumnError listing all absent names is returned. The input table is
// not modified.
func ProjectColumns(t *transformer.Table, order []string, rename map[string]string) (*transformer.Table, error) {
	idx := make([]int, len(order))
	var missing []string
	for i, name := range order {
		idx[i] = t.Index(name)
		if idx[i] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing, Available: t.Columns}
	}

	out := &transformer.Table{
		Columns: make([]string, len(order)),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, name := range order {
		if to, ok := rename[name]; ok && to != "" {
			name = to
		}
		out.Columns[i] = name
	}
	for r, row := range t.Rows {
		nr := make([]any, len(idx))
		for j, i := range idx {
			nr[j] = row[i]
		}
		out.Rows[r] = nr
	}
	return out, nil
}
