package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rewardsetl/internal/schema"
	"rewardsetl/internal/transformer/builtin"
)

// Convert maps a pipeline cell onto the Go type a driver expects for a column
// of type typ. Values that do not fit become nil; ok reports whether a non-nil
// input survived.
//
//	string    → string (arrays/objects as JSON text)
//	float     → float64
//	integer   → int64
//	timestamp → time.Time (UTC)
//	boolean   → bool
func Convert(v any, typ schema.ColumnType) (out any, ok bool) {
	if v == nil {
		return nil, true
	}
	switch typ {
	case schema.String:
		return toText(v), true

	case schema.Float:
		if f, ok := builtin.ParseFloat(v); ok {
			return f, true
		}

	case schema.Integer:
		if f, ok := builtin.ParseFloat(v); ok && f == float64(int64(f)) {
			return int64(f), true
		}

	case schema.Timestamp:
		if t, ok := v.(time.Time); ok {
			return t.UTC(), true
		}

	case schema.Boolean:
		switch b := v.(type) {
		case bool:
			return b, true
		case string:
			if pb, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
				return pb, true
			}
		}
	}
	return nil, false
}

func toText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case []any, map[string]any:
		b, err := json.Marshal(x)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}
