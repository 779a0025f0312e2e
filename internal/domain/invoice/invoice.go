package invoice

import (
	"fmt"
	"time"

	"github.com/edi/backend/internal/domain/billing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status represents the status of an invoice
type Status string

const (
	StatusDraft  Status = "DRAFT"
	StatusIssued Status = "ISSUED"
	StatusSent   Status = "SENT"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusSent:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusIssued
	case StatusIssued:
		return target == StatusSent
	}
	return false
}

// IsVisibleToPartner reports whether partners may see invoices in this status
func (s Status) IsVisibleToPartner() bool {
	return s == StatusIssued || s == StatusSent
}

// PartnerVisibleStatuses lists the statuses shown to partners
func PartnerVisibleStatuses() []Status {
	return []Status{StatusIssued, StatusSent}
}

// AcceptanceNo derives the acceptance number printed on the payment notice
func AcceptanceNo(invoiceNo string) string {
	return "MP" + invoiceNo
}

// Dates are the printed dates of an invoice
type Dates struct {
	IssueDate       time.Time
	AcceptanceDate  *time.Time
	PaymentDeadline *time.Time
}

// Invoice is the SES invoice aggregate root. It settles one order for one
// target month. The amounts are a cache of the item settlements and are
// always recomputed from the items.
type Invoice struct {
	shared.BaseAggregateRoot
	ID           uuid.UUID
	OrderID      string
	CustomerID   string
	InvoiceNo    string
	AcceptanceNo string
	TargetMonth  time.Time
	Dates
	Department string
	Status     Status
	Items      []Item

	SubtotalAmount int64
	TaxAmount      int64
	TotalAmount    int64
}

// NewInvoice creates a DRAFT invoice for an order. invoiceNo is allocated
// by the caller from the creation month scope.
func NewInvoice(orderID, customerID, invoiceNo string, targetMonth time.Time, dates Dates, department string) (*Invoice, error) {
	if orderID == "" {
		return nil, shared.ErrInvalidInput.Newf("order id cannot be empty")
	}
	if invoiceNo == "" {
		return nil, shared.ErrInvalidInput.Newf("invoice number cannot be empty")
	}
	if targetMonth.IsZero() {
		return nil, shared.ErrInvalidInput.Newf("target month cannot be empty")
	}
	if dates.IssueDate.IsZero() {
		dates.IssueDate = time.Now()
	}
	if err := dates.validate(); err != nil {
		return nil, err
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ID:                uuid.New(),
		OrderID:           orderID,
		CustomerID:        customerID,
		InvoiceNo:         invoiceNo,
		AcceptanceNo:      AcceptanceNo(invoiceNo),
		TargetMonth:       firstOfMonth(targetMonth),
		Dates:             dates,
		Department:        department,
		Status:            StatusDraft,
		Items:             make([]Item, 0),
	}
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

func (d Dates) validate() error {
	if d.PaymentDeadline != nil && d.PaymentDeadline.Before(d.IssueDate.Truncate(24*time.Hour)) {
		return shared.ErrInvalidInput.Newf("payment deadline cannot precede the issue date")
	}
	return nil
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func (inv *Invoice) requireDraft(action string) error {
	if inv.Status != StatusDraft {
		return shared.ErrInvalidTransition.Newf("cannot %s invoice %s in %s status", action, inv.InvoiceNo, inv.Status)
	}
	return nil
}

// AddItem settles a new line and re-aggregates
func (inv *Invoice) AddItem(in ItemInput) (*Item, error) {
	if err := inv.requireDraft("add items to"); err != nil {
		return nil, err
	}
	item, err := NewItem(inv.ID, in)
	if err != nil {
		return nil, err
	}
	inv.Items = append(inv.Items, *item)
	inv.recalculateTotals()
	return item, nil
}

// UpdateItem re-settles one line and re-aggregates. Other lines are not recomputed.
func (inv *Invoice) UpdateItem(itemID uuid.UUID, in ItemInput) (*Item, error) {
	if err := inv.requireDraft("edit items of"); err != nil {
		return nil, err
	}
	for idx := range inv.Items {
		if inv.Items[idx].ID == itemID {
			if err := inv.Items[idx].apply(in); err != nil {
				return nil, err
			}
			inv.recalculateTotals()
			return &inv.Items[idx], nil
		}
	}
	return nil, shared.ErrNotFound.Newf("invoice item %s not found", itemID)
}

// RemoveItem drops one line and re-aggregates
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if err := inv.requireDraft("remove items from"); err != nil {
		return err
	}
	for idx := range inv.Items {
		if inv.Items[idx].ID == itemID {
			inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
			inv.recalculateTotals()
			return nil
		}
	}
	return shared.ErrNotFound.Newf("invoice item %s not found", itemID)
}

// UpdateDetails edits the printed dates and department
func (inv *Invoice) UpdateDetails(dates Dates, department string) error {
	if err := inv.requireDraft("edit"); err != nil {
		return err
	}
	if dates.IssueDate.IsZero() {
		dates.IssueDate = inv.IssueDate
	}
	if err := dates.validate(); err != nil {
		return err
	}
	inv.Dates = dates
	inv.Department = department
	inv.Touch()
	return nil
}

// recalculateTotals aggregates the stored item subtotals with tax applied once
func (inv *Invoice) recalculateTotals() {
	subtotals := make([]int64, len(inv.Items))
	for i := range inv.Items {
		subtotals[i] = inv.Items[i].Subtotal
	}
	summary := billing.Totals(subtotals...)
	inv.SubtotalAmount = summary.Subtotal
	inv.TaxAmount = summary.Tax
	inv.TotalAmount = summary.Total
	inv.Touch()
}

// Summary returns the cached amounts
func (inv *Invoice) Summary() billing.Summary {
	return billing.Summary{Subtotal: inv.SubtotalAmount, Tax: inv.TaxAmount, Total: inv.TotalAmount}
}

// Issue moves a DRAFT invoice to ISSUED
func (inv *Invoice) Issue() error {
	return inv.transition(StatusIssued)
}

// Send moves an ISSUED invoice to SENT
func (inv *Invoice) Send() error {
	return inv.transition(StatusSent)
}

func (inv *Invoice) transition(target Status) error {
	if !inv.Status.CanTransitionTo(target) {
		return shared.ErrInvalidTransition.Newf("cannot move invoice %s from %s to %s", inv.InvoiceNo, inv.Status, target)
	}
	from := inv.Status
	inv.Status = target
	inv.Touch()
	inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, from))
	return nil
}

// DocumentFileName returns the download name of a document of this invoice
func (inv *Invoice) DocumentFileName(prefix string) string {
	return fmt.Sprintf("%s_%s.pdf", prefix, inv.InvoiceNo)
}
