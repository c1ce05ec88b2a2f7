package storage

import (
	"context"
	"fmt"
	"log"

	"rewardsetl/internal/ddl"
	"rewardsetl/internal/schema"
	"rewardsetl/internal/transformer"
)

// Sink replaces whole destination tables through a Repository.
type Sink struct {
	Repo Repository
}

// NewSink wraps repo.
func NewSink(repo Repository) *Sink { return &Sink{Repo: repo} }

// Replace discards the destination table and rewrites it from t. types must
// declare every column of t; cells are converted to their declared type, and
// cells that do not fit are written as NULL. Failures wrap ErrSink.
func (s *Sink) Replace(ctx context.Context, t *transformer.Table, table string, types map[string]schema.ColumnType) (int64, error) {
	def := ddl.TableDef{FQN: table, Columns: make([]ddl.ColumnDef, len(t.Columns))}
	for i, c := range t.Columns {
		typ, ok := types[c]
		if !ok {
			return 0, fmt.Errorf("%w: table %s: no type declared for column %q", ErrSink, table, c)
		}
		def.Columns[i] = ddl.ColumnDef{Name: c, Type: typ, Nullable: true}
	}

	rows := make([][]any, len(t.Rows))
	nulled := 0
	for r, row := range t.Rows {
		out := make([]any, len(row))
		for i, v := range row {
			cv, ok := Convert(v, def.Columns[i].Type)
			if !ok {
				nulled++
			}
			out[i] = cv
		}
		rows[r] = out
	}
	if nulled > 0 {
		log.Printf("sink: table=%s nulled=%d cells that did not fit their column type", table, nulled)
	}

	n, err := s.Repo.ReplaceTable(ctx, def, rows)
	if err != nil {
		return n, fmt.Errorf("%w: replace %s: %w", ErrSink, table, err)
	}
	log.Printf("sink: table=%s replaced rows=%d", table, n)
	return n, nil
}
