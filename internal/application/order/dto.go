package order

import (
	"time"

	"github.com/edi/backend/internal/domain/billing"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Date layouts accepted in requests
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// ==================== Requests ====================

// HeaderRequest carries the printed header fields of an order
type HeaderRequest struct {
	ProjectID        string `json:"project_id" binding:"omitempty,max=32"`
	OrderEndYM       string `json:"order_end_ym" binding:"omitempty,datetime=2006-01"`
	WorkStart        string `json:"work_start" binding:"omitempty,datetime=2006-01-02"`
	WorkEnd          string `json:"work_end" binding:"omitempty,datetime=2006-01-02"`
	DeliverableText  string `json:"deliverable_text" binding:"max=255"`
	PaymentCondition string `json:"payment_condition"`
	ContractItems    string `json:"contract_items"`
	Remarks          string `json:"remarks"`

	BuyerResponsible    string `json:"buyer_responsible" binding:"max=64"`
	BuyerContact        string `json:"buyer_contact" binding:"max=64"`
	SupplierResponsible string `json:"supplier_responsible" binding:"max=64"`
	SupplierContact     string `json:"supplier_contact" binding:"max=64"`
	WorkLead            string `json:"work_lead" binding:"max=64"`

	BaseFee        int64           `json:"base_fee" binding:"min=0"`
	TimeLowerLimit decimal.Decimal `json:"time_lower_limit"`
	TimeUpperLimit decimal.Decimal `json:"time_upper_limit"`
	ShortageFee    int64           `json:"shortage_fee" binding:"min=0"`
	ExcessFee      int64           `json:"excess_fee" binding:"min=0"`
}

// CreateOrderRequest represents a request to create a draft order
type CreateOrderRequest struct {
	CustomerID string `json:"customer_id" binding:"required,len=10,numeric"`
	OrderDate  string `json:"order_date" binding:"required,datetime=2006-01-02"`
	HeaderRequest
	Items []ItemRequest `json:"items" binding:"omitempty,dive"`
}

// UpdateOrderRequest replaces the header of a draft order
type UpdateOrderRequest struct {
	HeaderRequest
}

// ItemRequest represents an order item in create and update requests
type ItemRequest struct {
	PersonName     string           `json:"person_name" binding:"max=64"`
	Effort         *decimal.Decimal `json:"effort"`
	BaseFee        int64            `json:"base_fee" binding:"min=0"`
	ActualHours    decimal.Decimal  `json:"actual_hours"`
	TimeLowerLimit *decimal.Decimal `json:"time_lower_limit"`
	TimeUpperLimit *decimal.Decimal `json:"time_upper_limit"`
	ShortageRate   int64            `json:"shortage_rate" binding:"min=0"`
	ExcessRate     int64            `json:"excess_rate" binding:"min=0"`
	Quantity       int              `json:"quantity" binding:"min=0"`
}

// ListOrdersRequest represents a request to list orders
type ListOrdersRequest struct {
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy       string `form:"order_by" binding:"omitempty,oneof=order_id order_date created_at updated_at status"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	CustomerID    string `form:"customer_id"`
	Status        string `form:"status" binding:"omitempty,oneof=DRAFT UNCONFIRMED CONFIRMING RECEIVED APPROVED"`
	ExcludeDrafts bool   `form:"exclude_drafts"`
}

// ==================== Responses ====================

// ItemResponse represents an order item
type ItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	PersonName     string          `json:"person_name"`
	Effort         decimal.Decimal `json:"effort"`
	BaseFee        int64           `json:"base_fee"`
	ActualHours    decimal.Decimal `json:"actual_hours"`
	TimeLowerLimit decimal.Decimal `json:"time_lower_limit"`
	TimeUpperLimit decimal.Decimal `json:"time_upper_limit"`
	ShortageRate   int64           `json:"shortage_rate"`
	ExcessRate     int64           `json:"excess_rate"`
	Quantity       int             `json:"quantity"`
	Price          int64           `json:"price"`
}

// OrderResponse represents an order with its items
type OrderResponse struct {
	OrderID          string     `json:"order_id"`
	CustomerID       string     `json:"customer_id"`
	ProjectID        string     `json:"project_id,omitempty"`
	Status           string     `json:"status"`
	OrderDate        string     `json:"order_date"`
	OrderEndYM       string     `json:"order_end_ym,omitempty"`
	WorkStart        string     `json:"work_start,omitempty"`
	WorkEnd          string     `json:"work_end,omitempty"`
	DeliverableText  string     `json:"deliverable_text"`
	PaymentCondition string     `json:"payment_condition"`
	ContractItems    string     `json:"contract_items"`
	Remarks          string     `json:"remarks"`
	FinalizedAt      *time.Time `json:"finalized_at,omitempty"`
	DocumentHash     string     `json:"document_hash,omitempty"`

	BuyerResponsible    string `json:"buyer_responsible"`
	BuyerContact        string `json:"buyer_contact"`
	SupplierResponsible string `json:"supplier_responsible"`
	SupplierContact     string `json:"supplier_contact"`
	WorkLead            string `json:"work_lead"`

	BaseFee        int64           `json:"base_fee"`
	TimeLowerLimit decimal.Decimal `json:"time_lower_limit"`
	TimeUpperLimit decimal.Decimal `json:"time_upper_limit"`
	ShortageFee    int64           `json:"shortage_fee"`
	ExcessFee      int64           `json:"excess_fee"`

	HasOrderDocument      bool   `json:"has_order_document"`
	HasAcceptanceDocument bool   `json:"has_acceptance_document"`
	ExternalSignatureID   string `json:"external_signature_id,omitempty"`

	Items     []ItemResponse  `json:"items"`
	Summary   billing.Summary `json:"summary"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ApproveResponse is the outcome of an approval
type ApproveResponse struct {
	Order           OrderResponse `json:"order"`
	AlreadyApproved bool          `json:"already_approved"`
	Warnings        []string      `json:"warnings,omitempty"`
}

// PublishResponse is the outcome of publishing an order
type PublishResponse struct {
	Order    OrderResponse `json:"order"`
	Warnings []string      `json:"warnings,omitempty"`
}

// ==================== Conversions ====================

func formatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(layout)
}

// ParseDate parses an optional request date; empty yields the zero time
func ParseDate(field, value, layout string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(layout, value, time.Local)
	if err != nil {
		return time.Time{}, shared.ErrInvalidInput.Newf("%s: %q is not a %s date", field, value, layout)
	}
	return t, nil
}

func (r HeaderRequest) toDomain() (order.Header, error) {
	endYM, err := ParseDate("order_end_ym", r.OrderEndYM, MonthLayout)
	if err != nil {
		return order.Header{}, err
	}
	start, err := ParseDate("work_start", r.WorkStart, DateLayout)
	if err != nil {
		return order.Header{}, err
	}
	end, err := ParseDate("work_end", r.WorkEnd, DateLayout)
	if err != nil {
		return order.Header{}, err
	}
	return order.Header{
		ProjectID:           r.ProjectID,
		OrderEndYM:          endYM,
		WorkStart:           start,
		WorkEnd:             end,
		DeliverableText:     r.DeliverableText,
		PaymentCondition:    r.PaymentCondition,
		ContractItems:       r.ContractItems,
		Remarks:             r.Remarks,
		BuyerResponsible:    r.BuyerResponsible,
		BuyerContact:        r.BuyerContact,
		SupplierResponsible: r.SupplierResponsible,
		SupplierContact:     r.SupplierContact,
		WorkLead:            r.WorkLead,
		Band: billing.Band{
			Lower:        r.TimeLowerLimit,
			Upper:        r.TimeUpperLimit,
			BaseFee:      r.BaseFee,
			ShortageRate: r.ShortageFee,
			ExcessRate:   r.ExcessFee,
		},
	}, nil
}

func (r ItemRequest) toDomain() order.ItemInput {
	return order.ItemInput{
		PersonName:   r.PersonName,
		Effort:       r.Effort,
		BaseFee:      r.BaseFee,
		ActualHours:  r.ActualHours,
		LowerLimit:   r.TimeLowerLimit,
		UpperLimit:   r.TimeUpperLimit,
		ShortageRate: r.ShortageRate,
		ExcessRate:   r.ExcessRate,
		Quantity:     r.Quantity,
	}
}

func (r ListOrdersRequest) toFilter() order.ListFilter {
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
	return order.ListFilter{
		Filter:        f.Normalize(),
		CustomerID:    r.CustomerID,
		Status:        order.Status(r.Status),
		ExcludeDrafts: r.ExcludeDrafts,
	}
}

// ToOrderResponse converts a domain order to its response DTO
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]ItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = ItemResponse{
			ID:             item.ID,
			PersonName:     item.PersonName,
			Effort:         item.Effort,
			BaseFee:        item.BaseFee,
			ActualHours:    item.ActualHours,
			TimeLowerLimit: item.LowerLimit,
			TimeUpperLimit: item.UpperLimit,
			ShortageRate:   item.ShortageRate,
			ExcessRate:     item.ExcessRate,
			Quantity:       item.Quantity,
			Price:          item.Price,
		}
	}
	return OrderResponse{
		OrderID:               o.ID,
		CustomerID:            o.CustomerID,
		ProjectID:             o.ProjectID,
		Status:                o.Status.String(),
		OrderDate:             formatDate(o.OrderDate, DateLayout),
		OrderEndYM:            formatDate(o.OrderEndYM, MonthLayout),
		WorkStart:             formatDate(o.WorkStart, DateLayout),
		WorkEnd:               formatDate(o.WorkEnd, DateLayout),
		DeliverableText:       o.DeliverableText,
		PaymentCondition:      o.PaymentCondition,
		ContractItems:         o.ContractItems,
		Remarks:               o.Remarks,
		FinalizedAt:           o.FinalizedAt,
		DocumentHash:          o.DocumentHash,
		BuyerResponsible:      o.BuyerResponsible,
		BuyerContact:          o.BuyerContact,
		SupplierResponsible:   o.SupplierResponsible,
		SupplierContact:       o.SupplierContact,
		WorkLead:              o.WorkLead,
		BaseFee:               o.Band.BaseFee,
		TimeLowerLimit:        o.Band.Lower,
		TimeUpperLimit:        o.Band.Upper,
		ShortageFee:           o.Band.ShortageRate,
		ExcessFee:             o.Band.ExcessRate,
		HasOrderDocument:      o.OrderPDFKey != "",
		HasAcceptanceDocument: o.AcceptancePDFKey != "",
		ExternalSignatureID:   o.ExternalSignatureID,
		Items:                 items,
		Summary:               o.Summary(),
		Version:               o.GetVersion(),
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}
