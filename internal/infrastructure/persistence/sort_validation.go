package persistence

import (
	"strings"

	"github.com/edi/backend/internal/domain/shared"
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

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"name_kana":  true,
}

// ProjectSortFields contains allowed sort fields for projects
var ProjectSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_date":   true,
	"customer_id":  true,
	"status":       true,
	"finalized_at": true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"invoice_no":   true,
	"target_month": true,
	"issue_date":   true,
	"status":       true,
	"total_amount": true,
}

// ContractProgressSortFields contains allowed sort fields for onboarding rows
var ContractProgressSortFields = map[string]bool{
	"customer_id": true,
	"status":      true,
	"updated_at":  true,
}

// EmailLogSortFields contains allowed sort fields for sent mail logs
var EmailLogSortFields = map[string]bool{
	"sent_at": true,
	"subject": true,
}

// paginate applies a whitelisted ORDER BY, a tie-breaker and LIMIT/OFFSET
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField, tieBreaker string) *gorm.DB {
	filter = filter.Normalize()
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(field + " " + dir)
	if tieBreaker != "" && tieBreaker != field {
		query = query.Order(tieBreaker + " " + dir)
	}
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

// likePattern escapes LIKE wildcards in a user supplied search term
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(search)) + "%"
}
