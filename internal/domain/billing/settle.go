package billing

import (
	"github.com/edi/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TaxRate is the consumption tax rate applied to invoice subtotals
var TaxRate = decimal.NewFromFloat(0.10)

// Band is a banded rate schedule: a flat fee within [Lower, Upper] hours and a
// per-hour adjustment outside it. A zero limit disables that side of the band.
type Band struct {
	Lower        decimal.Decimal `json:"time_lower_limit"`
	Upper        decimal.Decimal `json:"time_upper_limit"`
	BaseFee      int64           `json:"base_fee"`
	ShortageRate int64           `json:"shortage_rate"`
	ExcessRate   int64           `json:"excess_rate"`
}

// Validate rejects negative inputs and inverted limits
func (b Band) Validate() error {
	if b.Lower.IsNegative() || b.Upper.IsNegative() {
		return shared.ErrInvalidInput.Newf("time limits cannot be negative")
	}
	if b.Lower.IsPositive() && b.Upper.IsPositive() && b.Lower.GreaterThan(b.Upper) {
		return shared.ErrInvalidInput.Newf("lower limit %s exceeds upper limit %s", b.Lower, b.Upper)
	}
	if b.BaseFee < 0 || b.ShortageRate < 0 || b.ExcessRate < 0 {
		return shared.ErrInvalidInput.Newf("fees and rates cannot be negative")
	}
	return nil
}

// IsZero reports whether neither limit is set
func (b Band) IsZero() bool {
	return b.Lower.IsZero() && b.Upper.IsZero()
}

// Settlement is the result of settling one line
type Settlement struct {
	Excess   int64 `json:"excess_amount"`
	Shortage int64 `json:"shortage_amount"`
	Subtotal int64 `json:"subtotal"`
}

// Settle computes the excess or shortage adjustment for worked hours.
//
// Excess applies only when upper > 0 and worked > upper; shortage only when
// lower > 0 and worked < lower. The branches are exclusive, so at most one of
// Excess and Shortage is non-zero.
func Settle(worked, lower, upper decimal.Decimal, baseFee, shortageRate, excessRate int64) Settlement {
	var s Settlement
	switch {
	case upper.IsPositive() && worked.GreaterThan(upper):
		s.Excess = truncate(decimal.NewFromInt(excessRate).Mul(worked.Sub(upper)))
	case lower.IsPositive() && worked.LessThan(lower):
		s.Shortage = truncate(decimal.NewFromInt(shortageRate).Mul(lower.Sub(worked)))
	}
	s.Subtotal = baseFee + s.Excess - s.Shortage
	return s
}

// SettleBand is Settle with the schedule taken from b
func SettleBand(worked decimal.Decimal, b Band) Settlement {
	return Settle(worked, b.Lower, b.Upper, b.BaseFee, b.ShortageRate, b.ExcessRate)
}

// Tax returns the consumption tax on subtotal, truncated toward zero
func Tax(subtotal int64) int64 {
	return truncate(decimal.NewFromInt(subtotal).Mul(TaxRate))
}

// Summary is an invoice-level aggregate
type Summary struct {
	Subtotal int64 `json:"subtotal_amount"`
	Tax      int64 `json:"tax_amount"`
	Total    int64 `json:"total_amount"`
}

// Totals sums line subtotals first and applies tax once to the sum
func Totals(subtotals ...int64) Summary {
	var sum int64
	for _, v := range subtotals {
		sum += v
	}
	tax := Tax(sum)
	return Summary{Subtotal: sum, Tax: tax, Total: sum + tax}
}

// ScaledFee returns trunc(effort * monthlyFee), the fee of a partial allocation
func ScaledFee(effort decimal.Decimal, monthlyFee int64) int64 {
	return truncate(effort.Mul(decimal.NewFromInt(monthlyFee)))
}

// OrderItemPrice prices one worker allocation of an order.
// The effort-scaled fee is adjusted by the band only once hours are recorded.
func OrderItemPrice(effort decimal.Decimal, monthlyFee int64, actualHours decimal.Decimal, band Band) int64 {
	base := ScaledFee(effort, monthlyFee)
	if !actualHours.IsPositive() {
		return base
	}
	return Settle(actualHours, band.Lower, band.Upper, base, band.ShortageRate, band.ExcessRate).Subtotal
}

func truncate(d decimal.Decimal) int64 {
	return d.Truncate(0).IntPart()
}
