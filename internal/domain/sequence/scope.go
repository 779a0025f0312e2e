// Package sequence defines prefix-scoped, zero-padded identifier sequences
// for customers, projects, orders and invoices.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/edi/backend/internal/domain/shared"
)

// Entity identifies which table a scope numbers
type Entity string

const (
	EntityCustomer Entity = "customer"
	EntityProject  Entity = "project"
	EntityOrder    Entity = "order"
	EntityInvoice  Entity = "invoice"
)

// Scope is an (entity, prefix) pair identifiers are uniquely numbered within
type Scope struct {
	Entity Entity
	Prefix string
	Width  int
}

// Key returns the counter key, e.g. "order:MP20260201" or "customer"
func (s Scope) Key() string {
	if s.Prefix == "" {
		return string(s.Entity)
	}
	return string(s.Entity) + ":" + s.Prefix
}

func (s Scope) String() string {
	return s.Key()
}

// CustomerScope numbers customers as 10-digit ids with no prefix
func CustomerScope() Scope {
	return Scope{Entity: EntityCustomer, Width: 10}
}

// ProjectScope numbers projects as PRJ + 8 digits
func ProjectScope() Scope {
	return Scope{Entity: EntityProject, Prefix: "PRJ", Width: 8}
}

// OrderScope numbers orders per day as MP + YYYYMMDD + 6 digits
func OrderScope(day time.Time) Scope {
	return Scope{Entity: EntityOrder, Prefix: "MP" + day.Format("20060102"), Width: 6}
}

// InvoiceScope numbers invoices per month as YYMM + 3 digits
func InvoiceScope(month time.Time) Scope {
	return Scope{Entity: EntityInvoice, Prefix: month.Format("0601"), Width: 3}
}

// Limit returns 10^width, the first suffix that no longer fits
func (s Scope) Limit() int64 {
	limit := int64(1)
	for range s.Width {
		limit *= 10
	}
	return limit
}

// Format renders suffix zero-padded to the scope width, behind the prefix.
// It fails with SEQUENCE_EXHAUSTED when the suffix does not fit.
func (s Scope) Format(suffix int64) (string, error) {
	if s.Width <= 0 {
		return "", shared.ErrInvalidInput.Newf("sequence scope %s has no width", s.Key())
	}
	if suffix < 1 || suffix >= s.Limit() {
		return "", shared.ErrSequenceExhausted.Newf("sequence %s exhausted: %d does not fit in %d digits", s.Key(), suffix, s.Width)
	}
	return fmt.Sprintf("%s%0*d", s.Prefix, s.Width, suffix), nil
}

// ParseSuffix extracts the numeric suffix of id within the scope.
// ok is false when id does not belong to the scope, or the suffix is not
// numeric or not exactly Width digits long.
func (s Scope) ParseSuffix(id string) (suffix int64, ok bool) {
	if !strings.HasPrefix(id, s.Prefix) {
		return 0, false
	}
	digits := id[len(s.Prefix):]
	if digits == "" || (s.Width > 0 && len(digits) != s.Width) {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MaxSuffix returns the highest numeric suffix among ids, together with the
// ids whose suffix could not be parsed. Malformed ids never abort the scan.
func (s Scope) MaxSuffix(ids []string) (highest int64, malformed []string) {
	for _, id := range ids {
		n, ok := s.ParseSuffix(id)
		if !ok {
			malformed = append(malformed, id)
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest, malformed
}

// Allocator hands out the next identifier of a scope.
// Concurrent calls for the same scope never return the same identifier.
type Allocator interface {
	Allocate(ctx context.Context, scope Scope) (string, error)
}
