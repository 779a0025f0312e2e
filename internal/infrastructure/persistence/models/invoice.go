package models

import (
	"time"

	"github.com/edi/backend/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// order_id is unique: an order is invoiced at most once.
type InvoiceModel struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderID         string         `gorm:"type:varchar(20);not null;uniqueIndex:idx_invoices_order_id"`
	CustomerID      string         `gorm:"type:varchar(10);not null;index"`
	InvoiceNo       string         `gorm:"type:varchar(12);not null;uniqueIndex:idx_invoices_invoice_no"`
	AcceptanceNo    string         `gorm:"type:varchar(14);not null"`
	TargetMonth     time.Time      `gorm:"type:date;not null"`
	IssueDate       time.Time      `gorm:"type:date;not null"`
	AcceptanceDate  *time.Time     `gorm:"type:date"`
	PaymentDeadline *time.Time     `gorm:"type:date"`
	Department      string         `gorm:"type:varchar(100)"`
	Status          invoice.Status `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	SubtotalAmount  int64          `gorm:"not null;default:0"`
	TaxAmount       int64          `gorm:"not null;default:0"`
	TotalAmount     int64          `gorm:"not null;default:0"`

	AggregateModel
	Items []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ID:                m.ID,
		OrderID:           m.OrderID,
		CustomerID:        m.CustomerID,
		InvoiceNo:         m.InvoiceNo,
		AcceptanceNo:      m.AcceptanceNo,
		TargetMonth:       m.TargetMonth,
		Dates: invoice.Dates{
			IssueDate:       m.IssueDate,
			AcceptanceDate:  m.AcceptanceDate,
			PaymentDeadline: m.PaymentDeadline,
		},
		Department:     m.Department,
		Status:         m.Status,
		SubtotalAmount: m.SubtotalAmount,
		TaxAmount:      m.TaxAmount,
		TotalAmount:    m.TotalAmount,
		Items:          make([]invoice.Item, len(m.Items)),
	}
	for i := range m.Items {
		inv.Items[i] = *m.Items[i].ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *invoice.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.ID = inv.ID
	m.OrderID = inv.OrderID
	m.CustomerID = inv.CustomerID
	m.InvoiceNo = inv.InvoiceNo
	m.AcceptanceNo = inv.AcceptanceNo
	m.TargetMonth = inv.TargetMonth
	m.IssueDate = inv.IssueDate
	m.AcceptanceDate = inv.AcceptanceDate
	m.PaymentDeadline = inv.PaymentDeadline
	m.Department = inv.Department
	m.Status = inv.Status
	m.SubtotalAmount = inv.SubtotalAmount
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i] = *InvoiceItemModelFromDomain(&inv.Items[i])
		m.Items[i].InvoiceID = inv.ID
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for one invoice line.
// The band is copied from the order line when the invoice is created.
type InvoiceItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PersonName     string          `gorm:"type:varchar(100);not null"`
	WorkTime       decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	BaseFee        int64           `gorm:"not null;default:0"`
	TimeLowerLimit decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	TimeUpperLimit decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	ShortageRate   int64           `gorm:"not null;default:0"`
	ExcessRate     int64           `gorm:"not null;default:0"`
	ExcessAmount   int64           `gorm:"not null;default:0"`
	ShortageAmount int64           `gorm:"not null;default:0"`
	Subtotal       int64           `gorm:"column:item_subtotal;not null;default:0"`
	Remarks        string          `gorm:"type:text"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain invoice Item
func (m *InvoiceItemModel) ToDomain() *invoice.Item {
	return &invoice.Item{
		ID:             m.ID,
		InvoiceID:      m.InvoiceID,
		PersonName:     m.PersonName,
		WorkTime:       m.WorkTime,
		BaseFee:        m.BaseFee,
		LowerLimit:     m.TimeLowerLimit,
		UpperLimit:     m.TimeUpperLimit,
		ShortageRate:   m.ShortageRate,
		ExcessRate:     m.ExcessRate,
		ExcessAmount:   m.ExcessAmount,
		ShortageAmount: m.ShortageAmount,
		Subtotal:       m.Subtotal,
		Remarks:        m.Remarks,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// InvoiceItemModelFromDomain creates a persistence model from a domain invoice Item
func InvoiceItemModelFromDomain(i *invoice.Item) *InvoiceItemModel {
	return &InvoiceItemModel{
		ID:             i.ID,
		InvoiceID:      i.InvoiceID,
		PersonName:     i.PersonName,
		WorkTime:       i.WorkTime,
		BaseFee:        i.BaseFee,
		TimeLowerLimit: i.LowerLimit,
		TimeUpperLimit: i.UpperLimit,
		ShortageRate:   i.ShortageRate,
		ExcessRate:     i.ExcessRate,
		ExcessAmount:   i.ExcessAmount,
		ShortageAmount: i.ShortageAmount,
		Subtotal:       i.Subtotal,
		Remarks:        i.Remarks,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}
