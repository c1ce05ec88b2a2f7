package storage

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"rewardsetl/internal/schema"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	ts := time.Date(2021, 1, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))

	tests := []struct {
		name   string
		in     any
		typ    schema.ColumnType
		want   any
		wantOK bool
	}{
		{"nil stays nil", nil, schema.Float, nil, true},
		{"string passthrough", "abc", schema.String, "abc", true},
		{"number as text", json.Number("511111"), schema.String, "511111", true},
		{"bool as text", true, schema.String, "true", true},
		{"array as json text", []any{"a", 1.0}, schema.String, `["a",1]`, true},
		{"float from string", "1.25", schema.Float, 1.25, true},
		{"float from number", json.Number("3"), schema.Float, 3.0, true},
		{"float from junk", "x", schema.Float, nil, false},
		{"integer from float", 4.0, schema.Integer, int64(4), true},
		{"integer from fraction", 4.5, schema.Integer, nil, false},
		{"timestamp normalized to UTC", ts, schema.Timestamp, ts.UTC(), true},
		{"timestamp from string", "2021-01-01", schema.Timestamp, nil, false},
		{"bool passthrough", false, schema.Boolean, false, true},
		{"bool from string", "true", schema.Boolean, true, true},
		{"bool from junk", "maybe", schema.Boolean, nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Convert(tc.in, tc.typ)
			if ok != tc.wantOK || !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Convert(%#v, %s) = (%#v, %v); want (%#v, %v)", tc.in, tc.typ, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}
