package builtin

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"rewardsetl/internal/transformer"
)

// Coerce converts the named columns in place: Timestamps from epoch
// milliseconds to time.Time, Numerics to float64. Cells that cannot be
// converted become nil; Nulled counts them across calls.
type Coerce struct {
	Timestamps []string
	Numerics   []string

	Nulled int
}

// Apply implements transformer.Transformer.
func (c *Coerce) Apply(t *transformer.Table) (*transformer.Table, error) {
	n, err := ToTimestamp(t, c.Timestamps)
	c.Nulled += n
	if err != nil {
		return nil, err
	}
	n, err = ToNumeric(t, c.Numerics)
	c.Nulled += n
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ToTimestamp replaces each cell of the named columns with the UTC time that
// many milliseconds after the Unix epoch. A cell that is not an integer
// becomes nil. It returns how many non-nil cells were nulled.
func ToTimestamp(t *transformer.Table, columns []string) (int, error) {
	return convertColumns(t, columns, func(v any) (any, bool) {
		ms, ok := epochMillis(v)
		if !ok {
			return nil, false
		}
		return time.UnixMilli(ms).UTC(), true
	})
}

// ToNumeric replaces each cell of the named columns with its float64 value.
// Malformed strings, other types, and nil become nil. It returns how many
// non-nil cells were nulled.
func ToNumeric(t *transformer.Table, columns []string) (int, error) {
	return convertColumns(t, columns, func(v any) (any, bool) {
		f, ok := ParseFloat(v)
		if !ok {
			return nil, false
		}
		return f, true
	})
}

func convertColumns(t *transformer.Table, columns []string, conv func(any) (any, bool)) (int, error) {
	idx := make([]int, len(columns))
	var missing []string
	for i, c := range columns {
		idx[i] = t.Index(c)
		if idx[i] < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return 0, &MissingColumnError{Columns: missing, Available: t.Columns}
	}

	nulled := 0
	for _, row := range t.Rows {
		for _, i := range idx {
			v, ok := conv(row[i])
			if !ok && row[i] != nil {
				nulled++
			}
			row[i] = v
		}
	}
	return nulled, nil
}

// ParseFloat is the best-effort numeric parse shared by the coercer and the
// sinks. Strings are trimmed; NaN and infinities are rejected.
func ParseFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		var err error
		if f, err = x.Float64(); err != nil {
			return 0, false
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(x), 64); err != nil {
			return 0, false
		}
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// epochMillis extracts an integer millisecond count. Integral floats are
// accepted because generic JSON decoders produce float64 for every number.
func epochMillis(v any) (int64, bool) {
	switch x := v.(type) {
	case json.Number:
		if ms, err := x.Int64(); err == nil {
			return ms, true
		}
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case string:
		ms, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return ms, err == nil
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case float64:
		return integral(x)
	default:
		return 0, false
	}
}

func integral(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<62 {
		return 0, false
	}
	return int64(f), true
}
