// Package json implements a newline-delimited JSON reader that turns each line
// into a records.Record.
//
// It is deliberately strict:
//
//   - Exactly one JSON object per line:
//     {"_id":{"$oid":"a"},"name":"x"}
//     {"_id":{"$oid":"b"},"name":"y"}
//   - Blank lines are skipped.
//   - Any other top-level value (array, string, number) or malformed JSON is a
//     *ParseError carrying the 1-based line number.
//
// Numbers are decoded as json.Number so callers decide how to map them; epoch
// millisecond timestamps keep full precision that way.
package json

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"rewardsetl/pkg/records"
)

// maxLineBytes bounds a single NDJSON line. Receipts with long item lists can
// run to a few hundred KB.
const maxLineBytes = 16 << 20

// ParseError reports a line that is not a single valid JSON object.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("json parser: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// errNotObject is wrapped by ParseError when a line holds a non-object value.
var errNotObject = errors.New("top-level value is not an object")

// Decoder reads NDJSON objects one line at a time.
type Decoder struct {
	sc   *bufio.Scanner
	line int
}

// NewDecoder constructs a Decoder over r. A leading UTF-8 (or UTF-16) byte
// order mark is consumed transparently.
func NewDecoder(r io.Reader) *Decoder {
	r = transform.NewReader(r, unicode.BOMOverride(transform.Nop))
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Decoder{sc: sc}
}

// Next returns the next record. io.EOF is returned when the stream is
// exhausted.
func (d *Decoder) Next() (records.Record, error) {
	for d.sc.Scan() {
		d.line++
		b := bytes.TrimSpace(d.sc.Bytes())
		if len(b) == 0 {
			continue
		}

		dec := json.NewDecoder(bytes.NewReader(b))
		dec.UseNumber()

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return nil, &ParseError{Line: d.line, Err: err}
		}
		// Trailing garbage after the object on the same line.
		if dec.More() {
			return nil, &ParseError{Line: d.line, Err: errors.New("unexpected data after object")}
		}
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, &ParseError{Line: d.line, Err: fmt.Errorf("%w (got %T)", errNotObject, raw)}
		}
		return records.Record(m), nil
	}
	if err := d.sc.Err(); err != nil {
		return nil, &ParseError{Line: d.line + 1, Err: err}
	}
	return nil, io.EOF
}

// Line returns the number of lines consumed so far.
func (d *Decoder) Line() int { return d.line }

// DecodeAll reads every record from r.
func DecodeAll(r io.Reader) ([]records.Record, error) {
	d := NewDecoder(r)
	var out []records.Record
	for {
		rec, err := d.Next()
		if err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, err
		}
		out = append(out, rec)
	}
}
