package persistence

import (
	"strings"

	"github.com/grocer/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// paginate applies whitelisted ordering and page limits.
// An unknown or empty sort field falls back to defaultOrder verbatim.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultOrder string) *gorm.DB {
	filter = filter.Normalize()

	if field := ValidateSortField(filter.OrderBy, allowed, ""); field != "" {
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order(defaultOrder)
	}

	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

// likePattern builds a case-insensitive LIKE pattern; callers compare against LOWER(column).
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

func withCommon(fields ...string) map[string]bool {
	m := make(map[string]bool, len(CommonSortFields)+len(fields))
	for k := range CommonSortFields {
		m[k] = true
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

var (
	UserSortFields         = withCommon("name", "email", "role", "status", "last_login_at")
	StoreSortFields        = withCommon("code", "name", "city", "status", "type")
	ServiceAreaSortFields  = withCommon("name", "city", "priority", "delivery_fee", "min_order_amount")
	CategorySortFields     = withCommon("code", "name", "level", "sort_order")
	ProductSortFields      = withCommon("sku", "name", "price", "mrp", "stock_quantity", "status")
	CouponSortFields       = withCommon("code", "valid_from", "valid_until", "used_count", "status")
	CouponUsageSortFields  = withCommon("discount", "released_at")
	OrderSortFields        = withCommon("order_number", "grand_total", "status", "delivered_at")
	ReviewSortFields       = withCommon("rating", "status")
	DistributorSortFields  = withCommon("business_name", "email", "city", "kyc_status", "submitted_at")
	ConversationSortFields = withCommon("subject", "priority", "status", "last_message_at")
	CreditNoteSortFields   = withCommon("note_number", "amount", "status")
	GSTLedgerSortFields    = withCommon("period", "transaction_date", "gst_rate", "taxable_value", "total_tax")
	GSTSummarySortFields   = withCommon("period", "total_tax", "status")
)
