package pipeline

import (
	"errors"
	"fmt"

	"rewardsetl/internal/schema"
	"rewardsetl/internal/transformer"
	"rewardsetl/pkg/records"
)

// ErrMissingReceiptID is returned when a receipt has no _id.$oid.
var ErrMissingReceiptID = errors.New("receipt has no _id.$oid")

// workingID carries the receipt identifier through the explode step. It is
// dropped from the result; items get schema.ReceiptIDField instead.
const workingID = "id"

// ExpandReceiptItems explodes the line items of every receipt into one row
// per item, each stamped with its parent's receipt_id.
//
// A receipt whose item list is absent or null contributes no rows. The input
// records are not modified, so the same slice can also feed the receipts
// table.
func ExpandReceiptItems(recs []records.Record) (*transformer.Table, error) {
	prepared, err := prepareReceipts(recs)
	if err != nil {
		return nil, err
	}
	t, err := transformer.Flatten(prepared, transformer.FlattenOptions{
		Path: []string{schema.ReceiptItemsField},
		Meta: []string{workingID},
	})
	if err != nil {
		return nil, err
	}
	return t.Drop(workingID), nil
}

// prepareReceipts returns shallow copies of recs with the working id set, a
// missing item list backfilled as empty, and receipt_id stamped on each
// object item.
func prepareReceipts(recs []records.Record) ([]records.Record, error) {
	out := make([]records.Record, len(recs))
	for i, r := range recs {
		id, ok := r.Lookup("_id", "$oid")
		if !ok || id == nil {
			return nil, fmt.Errorf("%w: record %d", ErrMissingReceiptID, i)
		}

		cp := make(records.Record, len(r)+1)
		for k, v := range r {
			cp[k] = v
		}
		cp[workingID] = id

		switch items := r[schema.ReceiptItemsField].(type) {
		case nil:
			cp[schema.ReceiptItemsField] = []any{}
		case []any:
			stamped := make([]any, len(items))
			for j, it := range items {
				obj, isObj := it.(map[string]any)
				if !isObj {
					stamped[j] = it
					continue
				}
				item := make(map[string]any, len(obj)+1)
				for k, v := range obj {
					item[k] = v
				}
				item[schema.ReceiptIDField] = id
				stamped[j] = item
			}
			cp[schema.ReceiptItemsField] = stamped
		}
		// Any other type is left for Flatten to reject.
		out[i] = cp
	}
	return out, nil
}
