package pipeline

import (
	"errors"
	"reflect"
	"testing"

	"rewardsetl/internal/schema"
	"rewardsetl/internal/transformer"
)

/*
TestExpandReceiptItems_StampsReceiptID verifies that one receipt with two
items explodes into two rows sharing the parent's receipt_id, and that the
working id column does not leak into the result.
*/
func TestExpandReceiptItems_StampsReceiptID(t *testing.T) {
	t.Parallel()

	recs := decodeLines(t, receiptJSON("r1", "["+itemJSON("111", "1.00")+","+itemJSON("222", "2.00")+"]"))
	tbl, err := ExpandReceiptItems(recs)
	if err != nil {
		t.Fatalf("ExpandReceiptItems: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("rows = %d; want 2", tbl.Len())
	}
	if tbl.Index(workingID) >= 0 {
		t.Fatalf("working id column leaked: %v", tbl.Columns)
	}
	for r, bc := range []string{"111", "222"} {
		if got := cellAt(t, tbl, r, schema.ReceiptIDField); got != "r1" {
			t.Errorf("row %d receipt_id = %v; want r1", r, got)
		}
		if got := cellAt(t, tbl, r, "barcode"); got != bc {
			t.Errorf("row %d barcode = %v; want %s", r, got, bc)
		}
	}
}

/*
TestExpandReceiptItems_AbsentOrNullList verifies that receipts without an
item list, or with a null one, contribute no rows and no error.
*/
func TestExpandReceiptItems_AbsentOrNullList(t *testing.T) {
	t.Parallel()

	recs := decodeLines(t,
		receiptJSON("r1", ""),
		receiptJSON("r2", "null"),
		receiptJSON("r3", "["+itemJSON("333", "3.00")+"]"),
	)
	tbl, err := ExpandReceiptItems(recs)
	if err != nil {
		t.Fatalf("ExpandReceiptItems: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("rows = %d; want 1", tbl.Len())
	}
	if got := cellAt(t, tbl, 0, schema.ReceiptIDField); got != "r3" {
		t.Fatalf("receipt_id = %v; want r3", got)
	}
}

/*
TestExpandReceiptItems_DoesNotMutateInput verifies the input receipts are
left as decoded so the receipts table can be built from the same slice.
*/
func TestExpandReceiptItems_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	recs := decodeLines(t, receiptJSON("r1", ""), receiptJSON("r2", "["+itemJSON("1", "1")+"]"))
	before := decodeLines(t, receiptJSON("r1", ""), receiptJSON("r2", "["+itemJSON("1", "1")+"]"))

	if _, err := ExpandReceiptItems(recs); err != nil {
		t.Fatalf("ExpandReceiptItems: %v", err)
	}
	if !reflect.DeepEqual(recs, before) {
		t.Fatalf("input records were modified")
	}
}

func TestExpandReceiptItems_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want error
	}{
		{"missing id", `{"rewardsReceiptItemList":[]}`, ErrMissingReceiptID},
		{"list not an array", `{"_id":{"$oid":"r1"},"rewardsReceiptItemList":"oops"}`, transformer.ErrExplodePath},
		{"item carries id", `{"_id":{"$oid":"r1"},"rewardsReceiptItemList":[{"id":"x"}]}`, transformer.ErrMetaConflict},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ExpandReceiptItems(decodeLines(t, tc.line))
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v; want %v", err, tc.want)
			}
		})
	}
}
