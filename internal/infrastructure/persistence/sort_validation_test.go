package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"desc lowercase returns DESC", "desc", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE orders;--", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		allowedMap   map[string]bool
		defaultField string
		expected     string
	}{
		{"empty string returns default", "", OrderSortFields, "created_at", "created_at"},
		{"valid order field", "order_date", OrderSortFields, "created_at", "order_date"},
		{"invoice field", "invoice_no", InvoiceSortFields, "created_at", "invoice_no"},
		{"field of another table returns default", "invoice_no", OrderSortFields, "created_at", "created_at"},
		{"sql injection attempt returns default", "id; DROP TABLE orders;--", OrderSortFields, "created_at", "created_at"},
		{"case sensitive", "NAME", CustomerSortFields, "id", "id"},
		{"whitespace around valid field", "  name_kana  ", CustomerSortFields, "id", "name_kana"},
		{"field with quotes returns default", "name'--", ProjectSortFields, "id", "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, tt.allowedMap, tt.defaultField))
		})
	}
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%サンプル%", likePattern(" サンプル "))
	assert.Equal(t, `%100\%\_off%`, likePattern("100%_off"))
}
