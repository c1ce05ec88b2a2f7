// Package transformer holds the in-memory tabular model and the reshaping
// steps applied between reading records and loading tables.
package transformer

// Transformer is one reshaping step over a whole table. Implementations may
// return the input table (mutated in place) or a new one.
type Transformer interface {
	Apply(t *Table) (*Table, error)
}

// Chain is an ordered list of transformers.
type Chain []Transformer

// Apply runs each step in order and stops at the first error.
func (c Chain) Apply(t *Table) (*Table, error) {
	out := t
	for _, s := range c {
		var err error
		if out, err = s.Apply(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
