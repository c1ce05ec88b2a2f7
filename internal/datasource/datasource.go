// Package datasource defines how raw input bytes are opened and the error
// type used for every failure that happens before records reach the
// transformers.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Source opens a byte stream for reading.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// ErrSource matches every *Error via errors.Is.
var ErrSource = errors.New("source error")

// Error reports a missing input file or a line that failed to parse. It is
// always fatal for the run.
type Error struct {
	File string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("source %s: %v", e.File, e.Err)
}

// Unwrap exposes both ErrSource and the underlying cause, so callers can test
// for either (e.g. errors.Is(err, fs.ErrNotExist)).
func (e *Error) Unwrap() []error { return []error{ErrSource, e.Err} }
