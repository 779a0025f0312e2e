package invoice

import (
	"time"

	"github.com/edi/backend/internal/domain/billing"
	"github.com/edi/backend/internal/domain/invoice"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Date layouts accepted in requests
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// DatesRequest carries the printed dates of an invoice
type DatesRequest struct {
	IssueDate       string `json:"issue_date" binding:"omitempty,datetime=2006-01-02"`
	AcceptanceDate  string `json:"acceptance_date" binding:"omitempty,datetime=2006-01-02"`
	PaymentDeadline string `json:"payment_deadline" binding:"omitempty,datetime=2006-01-02"`
}

// CreateInvoiceRequest opens the invoice of an order
type CreateInvoiceRequest struct {
	OrderID     string `json:"order_id" binding:"required,max=32"`
	TargetMonth string `json:"target_month" binding:"required,datetime=2006-01"`
	DatesRequest
	Department string `json:"department" binding:"max=128"`
}

// UpdateInvoiceRequest edits the dates and department of a draft invoice
type UpdateInvoiceRequest struct {
	DatesRequest
	Department string `json:"department" binding:"max=128"`
}

// ItemRequest adds or edits a settlement line. Fields left out keep their
// current value; on a new line the band defaults to the order band.
type ItemRequest struct {
	PersonName     string           `json:"person_name" binding:"max=64"`
	WorkTime       *decimal.Decimal `json:"work_time"`
	BaseFee        *int64           `json:"base_fee" binding:"omitempty,min=0"`
	TimeLowerLimit *decimal.Decimal `json:"time_lower_limit"`
	TimeUpperLimit *decimal.Decimal `json:"time_upper_limit"`
	ShortageRate   *int64           `json:"shortage_rate" binding:"omitempty,min=0"`
	ExcessRate     *int64           `json:"excess_rate" binding:"omitempty,min=0"`
	Remarks        *string          `json:"remarks" binding:"omitempty,max=255"`
}

// ListInvoicesRequest represents a request to list invoices
type ListInvoicesRequest struct {
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by" binding:"omitempty,oneof=invoice_no issue_date created_at"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	CustomerID string `form:"customer_id"`
	OrderID    string `form:"order_id"`
	// PartnerVisible limits the list to ISSUED and SENT invoices
	PartnerVisible bool `form:"partner_visible"`
}

// ItemResponse represents a settlement line
type ItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	PersonName     string          `json:"person_name"`
	WorkTime       decimal.Decimal `json:"work_time"`
	BaseFee        int64           `json:"base_fee"`
	TimeLowerLimit decimal.Decimal `json:"time_lower_limit"`
	TimeUpperLimit decimal.Decimal `json:"time_upper_limit"`
	ShortageRate   int64           `json:"shortage_rate"`
	ExcessRate     int64           `json:"excess_rate"`
	ExcessAmount   int64           `json:"excess_amount"`
	ShortageAmount int64           `json:"shortage_amount"`
	Subtotal       int64           `json:"item_subtotal"`
	Remarks        string          `json:"remarks"`
}

// InvoiceResponse represents an invoice with its lines
type InvoiceResponse struct {
	ID              uuid.UUID      `json:"id"`
	OrderID         string         `json:"order_id"`
	CustomerID      string         `json:"customer_id"`
	InvoiceNo       string         `json:"invoice_no"`
	AcceptanceNo    string         `json:"acceptance_no"`
	TargetMonth     string         `json:"target_month"`
	IssueDate       string         `json:"issue_date"`
	AcceptanceDate  string         `json:"acceptance_date,omitempty"`
	PaymentDeadline string         `json:"payment_deadline,omitempty"`
	Department      string         `json:"department"`
	Status          string         `json:"status"`
	Items           []ItemResponse `json:"items"`
	SubtotalAmount  int64          `json:"subtotal_amount"`
	TaxAmount       int64          `json:"tax_amount"`
	TotalAmount     int64          `json:"total_amount"`
	Version         int            `json:"version"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func parseDate(field, value, layout string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(layout, value, time.Local)
	if err != nil {
		return time.Time{}, shared.ErrInvalidInput.Newf("%s: %q is not a %s date", field, value, layout)
	}
	return t, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	t, err := parseDate(field, value, DateLayout)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}

func (r DatesRequest) toDomain() (invoice.Dates, error) {
	issue, err := parseDate("issue_date", r.IssueDate, DateLayout)
	if err != nil {
		return invoice.Dates{}, err
	}
	acceptance, err := parseOptionalDate("acceptance_date", r.AcceptanceDate)
	if err != nil {
		return invoice.Dates{}, err
	}
	deadline, err := parseOptionalDate("payment_deadline", r.PaymentDeadline)
	if err != nil {
		return invoice.Dates{}, err
	}
	return invoice.Dates{IssueDate: issue, AcceptanceDate: acceptance, PaymentDeadline: deadline}, nil
}

// merge overlays the request on base
func (r ItemRequest) merge(base invoice.ItemInput) invoice.ItemInput {
	out := base
	if r.PersonName != "" {
		out.PersonName = r.PersonName
	}
	if r.WorkTime != nil {
		out.WorkTime = *r.WorkTime
	}
	if r.Remarks != nil {
		out.Remarks = *r.Remarks
	}
	if r.BaseFee != nil {
		out.Band.BaseFee = *r.BaseFee
	}
	if r.TimeLowerLimit != nil {
		out.Band.Lower = *r.TimeLowerLimit
	}
	if r.TimeUpperLimit != nil {
		out.Band.Upper = *r.TimeUpperLimit
	}
	if r.ShortageRate != nil {
		out.Band.ShortageRate = *r.ShortageRate
	}
	if r.ExcessRate != nil {
		out.Band.ExcessRate = *r.ExcessRate
	}
	return out
}

func itemInput(item *invoice.Item) invoice.ItemInput {
	return invoice.ItemInput{
		PersonName: item.PersonName,
		WorkTime:   item.WorkTime,
		Band:       item.Band(),
		Remarks:    item.Remarks,
	}
}

func orderBandInput(band billing.Band) invoice.ItemInput {
	return invoice.ItemInput{Band: band}
}

func (r ListInvoicesRequest) toFilter() invoice.ListFilter {
	f := shared.DefaultFilter()
	if r.Page > 0 {
		f.Page = r.Page
	}
	if r.PageSize > 0 {
		f.PageSize = r.PageSize
	}
	if r.OrderBy != "" {
		f.OrderBy = r.OrderBy
	}
	if r.OrderDir != "" {
		f.OrderDir = r.OrderDir
	}
	return invoice.ListFilter{
		Filter:         f.Normalize(),
		CustomerID:     r.CustomerID,
		OrderID:        r.OrderID,
		PartnerVisible: r.PartnerVisible,
	}
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// ToInvoiceResponse converts a domain invoice to its response DTO
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	items := make([]ItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = ItemResponse{
			ID:             item.ID,
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
	return InvoiceResponse{
		ID:              inv.ID,
		OrderID:         inv.OrderID,
		CustomerID:      inv.CustomerID,
		InvoiceNo:       inv.InvoiceNo,
		AcceptanceNo:    inv.AcceptanceNo,
		TargetMonth:     inv.TargetMonth.Format(MonthLayout),
		IssueDate:       inv.IssueDate.Format(DateLayout),
		AcceptanceDate:  formatOptional(inv.AcceptanceDate),
		PaymentDeadline: formatOptional(inv.PaymentDeadline),
		Department:      inv.Department,
		Status:          inv.Status.String(),
		Items:           items,
		SubtotalAmount:  inv.SubtotalAmount,
		TaxAmount:       inv.TaxAmount,
		TotalAmount:     inv.TotalAmount,
		Version:         inv.GetVersion(),
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []invoice.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}
