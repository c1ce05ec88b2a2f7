// Package records defines the loosely-typed record shape produced by the
// source readers: one decoded JSON object, keyed by field name.
package records

// Record is a single decoded JSON object. Values are the shapes produced by
// encoding/json with UseNumber: map[string]any, []any, json.Number, string,
// bool, or nil.
type Record map[string]any

// Lookup walks path through nested objects and returns the value found there.
// ok is false when any segment is missing or an intermediate value is not an
// object.
func (r Record) Lookup(path ...string) (v any, ok bool) {
	if len(path) == 0 {
		return nil, false
	}
	var cur any = map[string]any(r)
	for _, p := range path {
		m, isObj := cur.(map[string]any)
		if !isObj {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}
