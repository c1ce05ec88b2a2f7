package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	jsonparser "rewardsetl/internal/parser/json"
	"rewardsetl/internal/schema"
	"rewardsetl/internal/transformer"
	"rewardsetl/pkg/records"
)

const brandLine = `{"_id":{"$oid":"601ac115be37ce2ead437551"},"barcode":"511111019862","category":"Baking","categoryCode":"BAKING","cpg":{"$id":{"$oid":"601ac114be37ce2ead437550"},"$ref":"Cogs"},"name":"test brand @1612366101024","brandCode":"BRAND1","topBrand":false}`

const userLine = `{"_id":{"$oid":"5ff1e194b6a9d73a3a9f1052"},"active":true,"createdDate":{"$date":1609687444800},"lastLogin":{"$date":1609687537858},"role":"consumer","signUpSource":"Email","state":"WI"}`

// itemJSON renders one line item carrying every projected item field.
func itemJSON(barcode, finalPrice string) string {
	return fmt.Sprintf(`{"partnerItemId":"1","barcode":%q,"description":"thing","itemPrice":%q,"itemNumber":"4011",`+
		`"quantityPurchased":1,"finalPrice":%q,"targetPrice":"1.00","discountedItemPrice":"0.90","priceAfterCoupon":"0.80",`+
		`"needsFetchReview":false,"needsFetchReviewReason":"USER_FLAGGED","pointsEarned":"10.0","pointsNotAwardedReason":"none",`+
		`"pointsPayerId":"p1","preventTargetGapPoints":true,"deleted":false,"rewardsGroup":"G","rewardsProductPartnerId":"rp1",`+
		`"userFlaggedBarcode":"u1","userFlaggedNewItem":true,"userFlaggedPrice":"2.00","userFlaggedQuantity":2,`+
		`"userFlaggedDescription":"d","competitiveProduct":false,"competitorRewardsGroup":"C","metabriteCampaignId":"m1"}`,
		barcode, finalPrice, finalPrice)
}

// receiptJSON renders a receipt; items is the raw JSON of the item list, or
// "" to omit the field.
func receiptJSON(id, items string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"_id":{"$oid":%q},"userId":"5ff1e194b6a9d73a3a9f1052","bonusPointsEarned":500,`, id)
	b.WriteString(`"bonusPointsEarnedReason":"Receipt number 2 completed, bonus point schedule DEFAULT (5cefdcacf3693e0b50e83a36)",`)
	b.WriteString(`"createDate":{"$date":1609687531000},"dateScanned":{"$date":1609687531000},"finishedDate":{"$date":1609687531000},`)
	b.WriteString(`"modifyDate":{"$date":1609687536000},"pointsAwardedDate":{"$date":1609687531000},"pointsEarned":"500.0",`)
	b.WriteString(`"purchaseDate":{"$date":1609632000000},"purchasedItemCount":5,"rewardsReceiptStatus":"FINISHED","totalSpent":"26.00"`)
	if items != "" {
		b.WriteString(`,"rewardsReceiptItemList":`)
		b.WriteString(items)
	}
	b.WriteString("}")
	return b.String()
}

func decodeLines(t testing.TB, lines ...string) []records.Record {
	t.Helper()
	recs, err := jsonparser.DecodeAll(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("DecodeAll: %v", err)
	}
	return recs
}

// memSource serves datasets from memory and counts reads per file.
type memSource struct {
	mu    sync.Mutex
	files map[string][]records.Record
	reads map[string]int
	err   error
}

func newMemSource(files map[string][]records.Record) *memSource {
	return &memSource{files: files, reads: map[string]int{}}
}

func (s *memSource) Read(_ context.Context, filename string) ([]records.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads[filename]++
	if s.err != nil {
		return nil, s.err
	}
	recs, ok := s.files[filename]
	if !ok {
		return nil, fmt.Errorf("no such dataset %q", filename)
	}
	return recs, nil
}

// memSink records every replaced table; failOn makes one table fail.
type memSink struct {
	tables map[string]*transformer.Table
	order  []string
	failOn string
	err    error
}

func newMemSink() *memSink { return &memSink{tables: map[string]*transformer.Table{}} }

func (s *memSink) Replace(_ context.Context, t *transformer.Table, table string, types map[string]schema.ColumnType) (int64, error) {
	if table == s.failOn {
		return 0, s.err
	}
	for _, c := range t.Columns {
		if _, ok := types[c]; !ok {
			return 0, fmt.Errorf("no type for %s.%s", table, c)
		}
	}
	s.tables[table] = t
	s.order = append(s.order, table)
	return int64(t.Len()), nil
}

func standardFiles(t testing.TB, receipts ...string) map[string][]records.Record {
	t.Helper()
	return map[string][]records.Record{
		schema.Brands.File:   decodeLines(t, brandLine),
		schema.Users.File:    decodeLines(t, userLine),
		schema.Receipts.File: decodeLines(t, receipts...),
	}
}

func cellAt(t testing.TB, tbl *transformer.Table, row int, col string) any {
	t.Helper()
	i := tbl.Index(col)
	if i < 0 {
		t.Fatalf("column %q not in %v", col, tbl.Columns)
	}
	return tbl.Rows[row][i]
}
