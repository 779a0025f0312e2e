package order

import (
	"fmt"
	"time"

	"github.com/edi/backend/internal/domain/billing"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status represents the lifecycle status of a purchase order
type Status string

const (
	StatusDraft       Status = "DRAFT"
	StatusUnconfirmed Status = "UNCONFIRMED"
	StatusConfirming  Status = "CONFIRMING"
	StatusReceived    Status = "RECEIVED" // reportable only, no transition reaches it
	StatusApproved    Status = "APPROVED"
)

// DefaultDeliverable is printed when no deliverable is given
const DefaultDeliverable = "月別作業報告書"

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusUnconfirmed, StatusConfirming, StatusReceived, StatusApproved:
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
		return target == StatusUnconfirmed
	case StatusUnconfirmed:
		return target == StatusConfirming || target == StatusApproved
	case StatusConfirming:
		return target == StatusApproved
	case StatusReceived, StatusApproved:
		return false // Terminal states
	}
	return false
}

// IsAwaitingApproval reports whether the partner still has to approve
func (s Status) IsAwaitingApproval() bool {
	return s == StatusUnconfirmed || s == StatusConfirming
}

// ApprovableStatuses lists the statuses Approve may leave from
func ApprovableStatuses() []Status {
	return []Status{StatusUnconfirmed, StatusConfirming}
}

// AllStatuses returns all valid Status values
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusUnconfirmed, StatusConfirming, StatusReceived, StatusApproved}
}

// Header holds the editable, printed fields of an order
type Header struct {
	ProjectID        string
	OrderEndYM       time.Time
	WorkStart        time.Time
	WorkEnd          time.Time
	DeliverableText  string
	PaymentCondition string
	ContractItems    string
	Remarks          string

	BuyerResponsible    string
	BuyerContact        string
	SupplierResponsible string
	SupplierContact     string
	WorkLead            string

	// Band is the order-level rate schedule. ShortageRate and ExcessRate
	// are the shortage and excess fees per hour.
	Band billing.Band
}

func (h *Header) validate() error {
	if !h.WorkStart.IsZero() && !h.WorkEnd.IsZero() && h.WorkEnd.Before(h.WorkStart) {
		return shared.ErrInvalidInput.Newf("work end %s is before work start %s",
			h.WorkEnd.Format(time.DateOnly), h.WorkStart.Format(time.DateOnly))
	}
	if err := h.Band.Validate(); err != nil {
		return err
	}
	if h.DeliverableText == "" {
		h.DeliverableText = DefaultDeliverable
	}
	return nil
}

// Order is the purchase order aggregate root.
//
// The acceptance document is frozen at approval: DocumentHash and
// AcceptancePDFKey are written together exactly once and never change.
type Order struct {
	shared.BaseAggregateRoot
	ID         string
	CustomerID string
	Status     Status
	OrderDate  time.Time
	Header
	Items []Item

	FinalizedAt         *time.Time
	DocumentHash        string
	OrderPDFKey         string
	AcceptancePDFKey    string
	ExternalSignatureID string
}

// NewOrder creates a DRAFT order. id is allocated by the caller in the
// same transaction as the insert.
func NewOrder(id, customerID string, orderDate time.Time, header Header) (*Order, error) {
	if id == "" {
		return nil, shared.ErrInvalidInput.Newf("order id cannot be empty")
	}
	if customerID == "" {
		return nil, shared.ErrInvalidInput.Newf("customer id cannot be empty")
	}
	if orderDate.IsZero() {
		return nil, shared.ErrInvalidInput.Newf("order date cannot be empty")
	}
	if err := header.validate(); err != nil {
		return nil, err
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ID:                id,
		CustomerID:        customerID,
		Status:            StatusDraft,
		OrderDate:         orderDate,
		Header:            header,
		Items:             make([]Item, 0),
	}
	o.AddDomainEvent(NewOrderCreatedEvent(o))
	return o, nil
}

func (o *Order) requireDraft(action string) error {
	if o.Status != StatusDraft {
		return shared.ErrInvalidTransition.Newf("cannot %s order %s in %s status", action, o.ID, o.Status)
	}
	return nil
}

// UpdateHeader replaces the printed fields. Only allowed in DRAFT status.
func (o *Order) UpdateHeader(header Header) error {
	if err := o.requireDraft("edit"); err != nil {
		return err
	}
	if err := header.validate(); err != nil {
		return err
	}
	o.Header = header
	o.Touch()
	return nil
}

// AddItem adds a worker allocation. Only allowed in DRAFT status.
func (o *Order) AddItem(in ItemInput) (*Item, error) {
	if err := o.requireDraft("add items to"); err != nil {
		return nil, err
	}
	item, err := NewItem(o.ID, in)
	if err != nil {
		return nil, err
	}
	o.Items = append(o.Items, *item)
	o.Touch()
	return item, nil
}

// UpdateItem rewrites an item and recomputes its price from its own fields
func (o *Order) UpdateItem(itemID uuid.UUID, in ItemInput) (*Item, error) {
	if err := o.requireDraft("edit items of"); err != nil {
		return nil, err
	}
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			if err := o.Items[idx].apply(in); err != nil {
				return nil, err
			}
			o.Touch()
			return &o.Items[idx], nil
		}
	}
	return nil, shared.ErrNotFound.Newf("order item %s not found", itemID)
}

// RemoveItem removes an item. Only allowed in DRAFT status.
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if err := o.requireDraft("remove items from"); err != nil {
		return err
	}
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.Touch()
			return nil
		}
	}
	return shared.ErrNotFound.Newf("order item %s not found", itemID)
}

// Summary returns the priced total of all items with tax applied once
func (o *Order) Summary() billing.Summary {
	prices := make([]int64, len(o.Items))
	for i := range o.Items {
		prices[i] = o.Items[i].Price
	}
	return billing.Totals(prices...)
}

// Publish moves a DRAFT order to UNCONFIRMED and attaches the stored order document
func (o *Order) Publish(orderPDFKey string) error {
	if !o.Status.CanTransitionTo(StatusUnconfirmed) {
		return shared.ErrInvalidTransition.Newf("cannot publish order %s in %s status", o.ID, o.Status)
	}
	if orderPDFKey == "" {
		return shared.ErrInvalidInput.Newf("order document key cannot be empty")
	}
	o.Status = StatusUnconfirmed
	o.OrderPDFKey = orderPDFKey
	o.Touch()
	o.AddDomainEvent(NewOrderPublishedEvent(o))
	return nil
}

// Acknowledge records that the partner started reviewing the order.
// It reports false when the order was already CONFIRMING.
func (o *Order) Acknowledge() (bool, error) {
	switch o.Status {
	case StatusConfirming:
		return false, nil
	case StatusUnconfirmed:
		o.Status = StatusConfirming
		o.Touch()
		o.AddDomainEvent(NewOrderAcknowledgedEvent(o))
		return true, nil
	}
	return false, shared.ErrInvalidTransition.Newf("cannot acknowledge order %s in %s status", o.ID, o.Status)
}

// Finalize stamps the approval time printed on the acceptance document.
// The snapshot taken after Finalize is the one that gets hashed.
func (o *Order) Finalize(at time.Time) error {
	if !o.Status.CanTransitionTo(StatusApproved) {
		return shared.ErrInvalidTransition.Newf("cannot approve order %s in %s status", o.ID, o.Status)
	}
	if o.DocumentHash != "" {
		return shared.ErrInvalidTransition.Newf("order %s already carries a document hash", o.ID)
	}
	at = at.Truncate(time.Second)
	o.FinalizedAt = &at
	return nil
}

// Approve freezes the acceptance document and moves the order to APPROVED
func (o *Order) Approve(documentHash, acceptancePDFKey string) error {
	if !o.Status.CanTransitionTo(StatusApproved) {
		return shared.ErrInvalidTransition.Newf("cannot approve order %s in %s status", o.ID, o.Status)
	}
	if o.FinalizedAt == nil {
		return shared.ErrInvalidTransition.Newf("order %s must be finalized before approval", o.ID)
	}
	if documentHash == "" || acceptancePDFKey == "" {
		return shared.ErrInvalidInput.Newf("document hash and key are required")
	}
	from := o.Status
	o.Status = StatusApproved
	o.DocumentHash = documentHash
	o.AcceptancePDFKey = acceptancePDFKey
	o.Touch()
	o.AddDomainEvent(NewOrderApprovedEvent(o, from))
	return nil
}

// IsApproved reports whether the acceptance document is frozen
func (o *Order) IsApproved() bool {
	return o.Status == StatusApproved
}

// AttachSignature records the external signature reference. It is set once.
func (o *Order) AttachSignature(ref string) error {
	if ref == "" {
		return shared.ErrInvalidInput.Newf("signature reference cannot be empty")
	}
	if o.ExternalSignatureID != "" && o.ExternalSignatureID != ref {
		return shared.ErrInvalidTransition.Newf("order %s already has signature reference %s", o.ID, o.ExternalSignatureID)
	}
	o.ExternalSignatureID = ref
	return nil
}

// DocumentFileName returns the download name of a document of this order
func (o *Order) DocumentFileName(prefix string) string {
	return fmt.Sprintf("%s_%s.pdf", prefix, o.ID)
}
