// Package schema declares the four analytic tables: where each comes from,
// which flattened columns it keeps and in what order, how they are renamed,
// which columns are coerced, and the column types handed to the sink.
//
// Everything here is data. The pipeline stays generic over any Entity.
package schema

// ColumnType is the logical type of a destination column.
type ColumnType string

const (
	String    ColumnType = "string"
	Integer   ColumnType = "integer"
	Float     ColumnType = "float"
	Timestamp ColumnType = "timestamp"
	Boolean   ColumnType = "boolean"
)

// Column is one destination column.
type Column struct {
	Name string
	Type ColumnType
}

// Entity describes one destination table.
type Entity struct {
	// Name labels logs and metrics.
	Name string
	// Table is the destination table, replaced on every run.
	Table string
	// File is the NDJSON file under the data directory.
	File string

	// Order lists flattened source columns to keep, in output order.
	Order []string
	// Rename maps source column names to destination names.
	Rename map[string]string

	// Timestamps and Numerics name destination (renamed) columns to coerce.
	Timestamps []string
	Numerics   []string

	// Columns are the destination column types for the sink.
	Columns []Column
}

// ColumnNames returns the destination column names in order.
func (e Entity) ColumnNames() []string {
	out := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		out[i] = c.Name
	}
	return out
}

// Types returns the destination column → type mapping.
func (e Entity) Types() map[string]ColumnType {
	out := make(map[string]ColumnType, len(e.Columns))
	for _, c := range e.Columns {
		out[c.Name] = c.Type
	}
	return out
}

// Receipt item explosion.
const (
	ReceiptItemsField = "rewardsReceiptItemList"
	ReceiptIDField    = "receipt_id"
)

var Brands = Entity{
	Name:  "brands",
	Table: "dim_brands",
	File:  "brands.json",
	Order: []string{"_id_$oid", "name", "brandCode", "barcode", "category", "categoryCode", "topBrand", "cpg_$id_$oid", "cpg_$ref"},
	Rename: map[string]string{
		"_id_$oid":     "brand_id",
		"name":         "brand_name",
		"brandCode":    "brand_code",
		"categoryCode": "category_code",
		"topBrand":     "top_brand",
		"cpg_$id_$oid": "cpg_id",
		"cpg_$ref":     "cpg_ref",
	},
	Columns: []Column{
		{"brand_id", String},
		{"brand_name", String},
		{"brand_code", String},
		{"barcode", String},
		{"category", String},
		{"category_code", String},
		{"top_brand", Boolean},
		{"cpg_id", String},
		{"cpg_ref", String},
	},
}

var Users = Entity{
	Name:  "users",
	Table: "dim_users",
	File:  "users.json",
	Order: []string{"_id_$oid", "role", "signUpSource", "state", "createdDate_$date", "active", "lastLogin_$date"},
	Rename: map[string]string{
		"_id_$oid":          "user_id",
		"signUpSource":      "sign_up_source",
		"createdDate_$date": "created_date",
		"lastLogin_$date":   "last_login",
	},
	Timestamps: []string{"created_date", "last_login"},
	Columns: []Column{
		{"user_id", String},
		{"role", String},
		{"sign_up_source", String},
		{"state", String},
		{"created_date", Timestamp},
		{"active", Boolean},
		{"last_login", Timestamp},
	},
}

var Receipts = Entity{
	Name:  "receipts",
	Table: "fact_receipts",
	File:  "receipts.json",
	Order: []string{
		"_id_$oid", "userId", "bonusPointsEarned", "bonusPointsEarnedReason",
		"createDate_$date", "dateScanned_$date", "finishedDate_$date", "modifyDate_$date",
		"pointsAwardedDate_$date", "pointsEarned", "purchaseDate_$date",
		"purchasedItemCount", "rewardsReceiptStatus", "totalSpent",
	},
	Rename: map[string]string{
		"_id_$oid":                "receipt_id",
		"userId":                  "user_id",
		"bonusPointsEarned":       "bonus_points_earned",
		"bonusPointsEarnedReason": "bonus_points_earned_reason",
		"createDate_$date":        "create_date",
		"dateScanned_$date":       "date_scanned",
		"finishedDate_$date":      "finished_date",
		"modifyDate_$date":        "modify_date",
		"pointsAwardedDate_$date": "points_awarded_date",
		"pointsEarned":            "points_earned",
		"purchaseDate_$date":      "purchase_date",
		"purchasedItemCount":      "purchased_item_count",
		"rewardsReceiptStatus":    "rewards_receipt_status",
		"totalSpent":              "total_spent",
	},
	Timestamps: []string{"create_date", "date_scanned", "finished_date", "modify_date", "points_awarded_date", "purchase_date"},
	Columns: []Column{
		{"receipt_id", String},
		{"user_id", String},
		{"bonus_points_earned", Float},
		{"bonus_points_earned_reason", String},
		{"create_date", Timestamp},
		{"date_scanned", Timestamp},
		{"finished_date", Timestamp},
		{"modify_date", Timestamp},
		{"points_awarded_date", Timestamp},
		{"points_earned", Float},
		{"purchase_date", Timestamp},
		{"purchased_item_count", Float},
		{"rewards_receipt_status", String},
		{"total_spent", Float},
	},
}

// ReceiptItems is built from receipts.json by exploding ReceiptItemsField.
var ReceiptItems = Entity{
	Name:  "receipt_items",
	Table: "dim_receipt_items",
	File:  "receipts.json",
	Order: []string{
		"receipt_id", "partnerItemId", "barcode", "description", "itemPrice", "itemNumber",
		"quantityPurchased", "finalPrice", "targetPrice", "discountedItemPrice", "priceAfterCoupon",
		"needsFetchReview", "needsFetchReviewReason", "pointsEarned", "pointsNotAwardedReason",
		"pointsPayerId", "preventTargetGapPoints", "deleted", "rewardsGroup", "rewardsProductPartnerId",
		"userFlaggedBarcode", "userFlaggedNewItem", "userFlaggedPrice", "userFlaggedQuantity",
		"userFlaggedDescription", "competitiveProduct", "competitorRewardsGroup", "metabriteCampaignId",
	},
	Rename: map[string]string{
		"partnerItemId":           "partner_item_id",
		"itemPrice":               "item_price",
		"itemNumber":              "item_number",
		"quantityPurchased":       "quantity_purchased",
		"finalPrice":              "final_price",
		"targetPrice":             "target_price",
		"discountedItemPrice":     "discounted_item_price",
		"priceAfterCoupon":        "price_after_coupon",
		"needsFetchReview":        "needs_fetch_review",
		"needsFetchReviewReason":  "needs_fetch_review_reason",
		"pointsEarned":            "points_earned",
		"pointsNotAwardedReason":  "points_not_awarded_reason",
		"pointsPayerId":           "points_payer_id",
		"preventTargetGapPoints":  "prevent_target_gap_points",
		"rewardsGroup":            "rewards_group",
		"rewardsProductPartnerId": "rewards_product_partner_id",
		"userFlaggedBarcode":      "user_flagged_barcode",
		"userFlaggedNewItem":      "user_flagged_new_item",
		"userFlaggedPrice":        "user_flagged_price",
		"userFlaggedQuantity":     "user_flagged_quantity",
		"userFlaggedDescription":  "user_flagged_description",
		"competitiveProduct":      "competitive_product",
		"competitorRewardsGroup":  "competitor_rewards_group",
		"metabriteCampaignId":     "metabrite_campaign_id",
	},
	Numerics: []string{"final_price", "item_price", "user_flagged_quantity", "points_earned", "target_price", "price_after_coupon"},
	Columns: []Column{
		{"receipt_id", String},
		{"partner_item_id", String},
		{"barcode", String},
		{"description", String},
		{"item_price", Float},
		{"item_number", Float},
		{"quantity_purchased", Float},
		{"final_price", Float},
		{"target_price", Float},
		{"discounted_item_price", Float},
		{"price_after_coupon", Float},
		{"needs_fetch_review", Boolean},
		{"needs_fetch_review_reason", String},
		{"points_earned", Float},
		{"points_not_awarded_reason", String},
		{"points_payer_id", String},
		{"prevent_target_gap_points", Boolean},
		{"deleted", Boolean},
		{"rewards_group", String},
		{"rewards_product_partner_id", String},
		{"user_flagged_barcode", String},
		{"user_flagged_new_item", Boolean},
		{"user_flagged_price", Float},
		{"user_flagged_quantity", Float},
		{"user_flagged_description", String},
		{"competitive_product", Boolean},
		{"competitor_rewards_group", String},
		{"metabrite_campaign_id", String},
	},
}

// All lists the entities in load order.
var All = []Entity{Brands, Users, Receipts, ReceiptItems}
