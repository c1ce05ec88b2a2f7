// Package pipeline drives a run: read the three NDJSON datasets, build the
// four analytic tables, and replace them in the destination database.
//
// Per dataset the steps are read, flatten, project, coerce, then load.
// Receipts are read once and feed both the receipts and receipt-items tables.
// The first failing step aborts the run; tables already loaded stay loaded.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"rewardsetl/internal/metrics"
	"rewardsetl/internal/schema"
	"rewardsetl/internal/transformer"
	"rewardsetl/internal/transformer/builtin"
	"rewardsetl/pkg/records"
)

// RecordSource reads one NDJSON dataset by file name.
type RecordSource interface {
	Read(ctx context.Context, filename string) ([]records.Record, error)
}

// TableSink replaces a destination table with the rows of t.
type TableSink interface {
	Replace(ctx context.Context, t *transformer.Table, table string, types map[string]schema.ColumnType) (int64, error)
}

// Runner executes the pipeline over Entities (schema.All when nil).
type Runner struct {
	Source RecordSource
	Sink   TableSink

	// Job labels logs and metrics.
	Job string
	// RunID tags every log line of a run. Run assigns a fresh UUID when empty.
	RunID string

	Entities []schema.Entity
}

// Built is one finished table, ready to load.
type Built struct {
	Entity schema.Entity
	Table  *transformer.Table
	// Nulled counts cells that coercion turned into NULL.
	Nulled int
}

// Result summarizes one loaded table.
type Result struct {
	Built
	Inserted int64
}

// Build reads every dataset and produces the finished tables in load order.
func (r *Runner) Build(ctx context.Context) ([]Built, error) {
	entities := r.Entities
	if entities == nil {
		entities = schema.All
	}

	cache := map[string][]records.Record{}
	out := make([]Built, 0, len(entities))
	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		recs, ok := cache[e.File]
		if !ok {
			err := r.step(e.Name, "read", func() (int, error) {
				var err error
				recs, err = r.Source.Read(ctx, e.File)
				return len(recs), err
			})
			if err != nil {
				return nil, err
			}
			cache[e.File] = recs
			metrics.RecordRow(r.Job, e.Name, "read", int64(len(recs)))
		}

		var flat *transformer.Table
		err := r.step(e.Name, "flatten", func() (int, error) {
			var err error
			flat, err = flattenFor(e, recs)
			if err != nil {
				return 0, err
			}
			return flat.Len(), nil
		})
		if err != nil {
			return nil, err
		}

		coerce := &builtin.Coerce{Timestamps: e.Timestamps, Numerics: e.Numerics}
		chain := transformer.Chain{
			r.timed(e.Name, "project", builtin.Project{Order: e.Order, Rename: e.Rename}),
			r.timed(e.Name, "coerce", coerce),
		}
		t, err := chain.Apply(flat)
		if err != nil {
			return nil, err
		}
		if coerce.Nulled > 0 {
			log.Printf("pipeline: run_id=%s dataset=%s coerce_nulled=%d", r.RunID, e.Name, coerce.Nulled)
			metrics.RecordRow(r.Job, e.Name, "coerce_nulled", int64(coerce.Nulled))
		}
		metrics.RecordRow(r.Job, e.Name, "built", int64(t.Len()))
		log.Printf("pipeline: run_id=%s dataset=%s table=%s rows=%d fingerprint=%016x",
			r.RunID, e.Name, e.Table, t.Len(), t.Fingerprint())

		out = append(out, Built{Entity: e, Table: t, Nulled: coerce.Nulled})
	}
	return out, nil
}

// Run builds every table and replaces each in the sink, in order, stopping
// at the first failure.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	if r.RunID == "" {
		r.RunID = uuid.NewString()
	}
	start := time.Now()
	log.Printf("pipeline: run_id=%s job=%s start", r.RunID, r.Job)

	built, err := r.Build(ctx)
	if err != nil {
		log.Printf("pipeline: run_id=%s failed during build: %v", r.RunID, err)
		return nil, err
	}

	results := make([]Result, 0, len(built))
	for _, b := range built {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		var n int64
		err := r.step(b.Entity.Name, "load", func() (int, error) {
			var err error
			n, err = r.Sink.Replace(ctx, b.Table, b.Entity.Table, b.Entity.Types())
			return int(n), err
		})
		if err != nil {
			log.Printf("pipeline: run_id=%s failed loading %s: %v", r.RunID, b.Entity.Table, err)
			return results, err
		}
		metrics.RecordRow(r.Job, b.Entity.Name, "inserted", n)
		results = append(results, Result{Built: b, Inserted: n})
	}

	log.Printf("pipeline: run_id=%s job=%s done tables=%d elapsed=%s",
		r.RunID, r.Job, len(results), time.Since(start).Truncate(time.Millisecond))
	return results, nil
}

// flattenFor turns the records of one dataset into a flat table. Receipt
// items are exploded; every other entity is one row per record.
func flattenFor(e schema.Entity, recs []records.Record) (*transformer.Table, error) {
	if e.Name != schema.ReceiptItems.Name {
		return transformer.Flatten(recs, transformer.FlattenOptions{})
	}
	t, err := ExpandReceiptItems(recs)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		// Nothing to infer columns from: give projection the declared shape.
		return transformer.NewTable(e.Order...), nil
	}
	return t, nil
}

// step runs fn as one named pipeline step: it times it, logs the outcome,
// records metrics, and tags a failure with the dataset and step.
func (r *Runner) step(dataset, name string, fn func() (int, error)) error {
	start := time.Now()
	rows, err := fn()
	d := time.Since(start)
	metrics.RecordStep(r.Job, dataset, name, err, d)
	if err != nil {
		log.Printf("pipeline: run_id=%s dataset=%s step=%s failed dur=%s err=%v", r.RunID, dataset, name, d, err)
		return fmt.Errorf("%s: %s: %w", dataset, name, err)
	}
	log.Printf("pipeline: run_id=%s dataset=%s step=%s rows=%d dur=%s", r.RunID, dataset, name, rows, d)
	return nil
}

// timed wraps a transformer so that applying it is recorded as a step.
func (r *Runner) timed(dataset, name string, tr transformer.Transformer) transformer.Transformer {
	return timedStep{r: r, dataset: dataset, name: name, tr: tr}
}

type timedStep struct {
	r       *Runner
	dataset string
	name    string
	tr      transformer.Transformer
}

func (s timedStep) Apply(t *transformer.Table) (*transformer.Table, error) {
	var out *transformer.Table
	err := s.r.step(s.dataset, s.name, func() (int, error) {
		var err error
		out, err = s.tr.Apply(t)
		if err != nil {
			return 0, err
		}
		return out.Len(), nil
	})
	return out, err
}
