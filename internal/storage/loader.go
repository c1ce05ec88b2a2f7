package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn inserts rows (aligned to columns) and returns how many were written.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// DefaultBatchSize is used when Config.BatchSize is not positive.
const DefaultBatchSize = 1000

// LoadBatches splits rows into batches of batchSize and calls copyFn for each.
// It returns the total reported by copyFn and the first error. Progress is
// logged on each flush.
func LoadBatches(
	ctx context.Context,
	table string,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total   int64
		batches int
		start   = time.Now()
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))

		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			log.Printf("loader: table=%s batch failed after=%d total=%d err=%v", table, n, total, err)
			return total, err
		}
		batches++
		log.Printf("loader: table=%s batch #%d inserted=%d total_inserted=%d elapsed=%s",
			table, batches, n, total, time.Since(start).Truncate(time.Millisecond))
	}
	return total, nil
}
