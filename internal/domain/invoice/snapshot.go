package invoice

import (
	"github.com/edi/backend/internal/domain/printing"
)

// Snapshot captures everything printed on the invoice and payment notice
func (inv *Invoice) Snapshot(customer printing.Party, projectName string, company printing.CompanyInfo) *printing.InvoiceSnapshot {
	lines := make([]printing.InvoiceLine, len(inv.Items))
	for i, item := range inv.Items {
		lines[i] = printing.InvoiceLine{
			PersonName:     item.PersonName,
			WorkTime:       item.WorkTime,
			BaseFee:        item.BaseFee,
			TimeLowerLimit: item.LowerLimit,
			TimeUpperLimit: item.UpperLimit,
			ShortageRate:   item.ShortageRate,
			ExcessRate:     item.ExcessRate,
			ExcessAmount:   item.ExcessAmount,
			ShortageAmount: item.ShortageAmount,
			Subtotal:       item.Subtotal,
			Remarks:        item.Remarks,
		}
	}
	return &printing.InvoiceSnapshot{
		InvoiceNo:       inv.InvoiceNo,
		AcceptanceNo:    inv.AcceptanceNo,
		OrderID:         inv.OrderID,
		ProjectName:     projectName,
		Department:      inv.Department,
		Status:          inv.Status.String(),
		TargetMonth:     inv.TargetMonth,
		IssueDate:       inv.IssueDate,
		AcceptanceDate:  inv.AcceptanceDate,
		PaymentDeadline: inv.PaymentDeadline,
		Items:           lines,
		Subtotal:        inv.SubtotalAmount,
		Tax:             inv.TaxAmount,
		Total:           inv.TotalAmount,
		Customer:        customer,
		Company:         company.WithDefaults(),
	}
}
