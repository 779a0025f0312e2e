package invoice

import (
	"github.com/edi/backend/internal/domain/billing"
	"github.com/edi/backend/internal/domain/order"
)

// SeedInputs derives the initial settlement lines of an order's invoice.
//
// Each order item becomes one line with the effort-scaled fee and the item's
// band; an item whose limits are both zero falls back to the order band.
// Recorded actual hours become the line's work time. An order without items
// yields a single line from the order band.
func SeedInputs(o *order.Order) []ItemInput {
	if len(o.Items) == 0 {
		name := o.WorkLead
		if name == "" {
			name = o.SupplierContact
		}
		return []ItemInput{{PersonName: name, Band: o.Band}}
	}

	inputs := make([]ItemInput, len(o.Items))
	for i, item := range o.Items {
		band := item.Band()
		if band.IsZero() {
			band = billing.Band{
				Lower:        o.Band.Lower,
				Upper:        o.Band.Upper,
				ShortageRate: o.Band.ShortageRate,
				ExcessRate:   o.Band.ExcessRate,
			}
		}
		band.BaseFee = billing.ScaledFee(item.Effort, item.BaseFee)
		inputs[i] = ItemInput{
			PersonName: item.DisplayName(),
			WorkTime:   item.ActualHours,
			Band:       band,
		}
	}
	return inputs
}

// Seed adds the lines derived from o to a fresh invoice
func (inv *Invoice) Seed(o *order.Order) error {
	for _, in := range SeedInputs(o) {
		if _, err := inv.AddItem(in); err != nil {
			return err
		}
	}
	return nil
}
