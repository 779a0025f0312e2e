package order

import (
	"github.com/edi/backend/internal/domain/printing"
)

// Snapshot captures everything printed on the order and acceptance documents.
// Rendering the same snapshot twice yields the same bytes.
func (o *Order) Snapshot(customer printing.Party, projectName string, company printing.CompanyInfo) *printing.OrderSnapshot {
	lines := make([]printing.OrderLine, len(o.Items))
	for i, item := range o.Items {
		lines[i] = printing.OrderLine{
			PersonName:     item.DisplayName(),
			Effort:         item.Effort,
			BaseFee:        item.BaseFee,
			TimeLowerLimit: item.LowerLimit,
			TimeUpperLimit: item.UpperLimit,
			ShortageRate:   item.ShortageRate,
			ExcessRate:     item.ExcessRate,
			Quantity:       item.Quantity,
			Price:          item.Price,
		}
	}
	summary := o.Summary()

	snap := &printing.OrderSnapshot{
		OrderID:             o.ID,
		Status:              o.Status.String(),
		OrderDate:           o.OrderDate,
		WorkStart:           o.WorkStart,
		WorkEnd:             o.WorkEnd,
		OrderEndYM:          o.OrderEndYM,
		ProjectID:           o.ProjectID,
		ProjectName:         projectName,
		DeliverableText:     o.DeliverableText,
		PaymentCondition:    o.PaymentCondition,
		ContractItems:       o.ContractItems,
		Remarks:             o.Remarks,
		BuyerResponsible:    o.BuyerResponsible,
		BuyerContact:        o.BuyerContact,
		SupplierResponsible: o.SupplierResponsible,
		SupplierContact:     o.SupplierContact,
		WorkLead:            o.WorkLead,
		BaseFee:             o.Band.BaseFee,
		TimeLowerLimit:      o.Band.Lower,
		TimeUpperLimit:      o.Band.Upper,
		ShortageFee:         o.Band.ShortageRate,
		ExcessFee:           o.Band.ExcessRate,
		Items:               lines,
		Subtotal:            summary.Subtotal,
		Tax:                 summary.Tax,
		Total:               summary.Total,
		Customer:            customer,
		Company:             company.WithDefaults(),
	}
	if o.FinalizedAt != nil {
		at := *o.FinalizedAt
		snap.FinalizedAt = &at
	}
	return snap
}
