package models

import (
	"time"

	"github.com/edi/backend/internal/domain/billing"
	"github.com/edi/backend/internal/domain/order"
	"github.com/edi/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	ID         string       `gorm:"type:varchar(20);primaryKey"`
	CustomerID string       `gorm:"type:varchar(10);not null;index"`
	ProjectID  *string      `gorm:"type:varchar(11);index"`
	Status     order.Status `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	OrderDate  time.Time    `gorm:"type:date;not null"`
	OrderEndYM *time.Time   `gorm:"column:order_end_ym;type:date"`
	WorkStart  *time.Time   `gorm:"type:date"`
	WorkEnd    *time.Time   `gorm:"type:date"`

	DeliverableText  string `gorm:"type:varchar(200);not null"`
	PaymentCondition string `gorm:"type:text"`
	ContractItems    string `gorm:"type:text"`
	Remarks          string `gorm:"type:text"`

	BuyerResponsible    string `gorm:"type:varchar(100)"`
	BuyerContact        string `gorm:"type:varchar(100)"`
	SupplierResponsible string `gorm:"type:varchar(100)"`
	SupplierContact     string `gorm:"type:varchar(100)"`
	WorkLead            string `gorm:"type:varchar(100)"`

	BaseFee        int64           `gorm:"not null;default:0"`
	TimeLowerLimit decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	TimeUpperLimit decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	ShortageFee    int64           `gorm:"not null;default:0"`
	ExcessFee      int64           `gorm:"not null;default:0"`

	FinalizedAt         *time.Time
	DocumentHash        *string `gorm:"type:varchar(64)"`
	OrderPDFKey         *string `gorm:"column:order_pdf_key;type:varchar(255)"`
	AcceptancePDFKey    *string `gorm:"column:acceptance_pdf_key;type:varchar(255)"`
	ExternalSignatureID *string `gorm:"type:varchar(100);uniqueIndex:idx_orders_external_signature_id"`

	AggregateModel
	Items []OrderItemModel `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	o := &order.Order{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ID:                m.ID,
		CustomerID:        m.CustomerID,
		Status:            m.Status,
		OrderDate:         m.OrderDate,
		Header: order.Header{
			ProjectID:           derefString(m.ProjectID),
			OrderEndYM:          derefTime(m.OrderEndYM),
			WorkStart:           derefTime(m.WorkStart),
			WorkEnd:             derefTime(m.WorkEnd),
			DeliverableText:     m.DeliverableText,
			PaymentCondition:    m.PaymentCondition,
			ContractItems:       m.ContractItems,
			Remarks:             m.Remarks,
			BuyerResponsible:    m.BuyerResponsible,
			BuyerContact:        m.BuyerContact,
			SupplierResponsible: m.SupplierResponsible,
			SupplierContact:     m.SupplierContact,
			WorkLead:            m.WorkLead,
			Band: billing.Band{
				Lower:        m.TimeLowerLimit,
				Upper:        m.TimeUpperLimit,
				BaseFee:      m.BaseFee,
				ShortageRate: m.ShortageFee,
				ExcessRate:   m.ExcessFee,
			},
		},
		FinalizedAt:         m.FinalizedAt,
		DocumentHash:        derefString(m.DocumentHash),
		OrderPDFKey:         derefString(m.OrderPDFKey),
		AcceptancePDFKey:    derefString(m.AcceptancePDFKey),
		ExternalSignatureID: derefString(m.ExternalSignatureID),
		Items:               make([]order.Item, len(m.Items)),
	}
	for i := range m.Items {
		o.Items[i] = *m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *order.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.ID = o.ID
	m.CustomerID = o.CustomerID
	m.ProjectID = nullableString(o.ProjectID)
	m.Status = o.Status
	m.OrderDate = o.OrderDate
	m.OrderEndYM = nullableTime(o.OrderEndYM)
	m.WorkStart = nullableTime(o.WorkStart)
	m.WorkEnd = nullableTime(o.WorkEnd)
	m.DeliverableText = o.DeliverableText
	m.PaymentCondition = o.PaymentCondition
	m.ContractItems = o.ContractItems
	m.Remarks = o.Remarks
	m.BuyerResponsible = o.BuyerResponsible
	m.BuyerContact = o.BuyerContact
	m.SupplierResponsible = o.SupplierResponsible
	m.SupplierContact = o.SupplierContact
	m.WorkLead = o.WorkLead
	m.BaseFee = o.Band.BaseFee
	m.TimeLowerLimit = o.Band.Lower
	m.TimeUpperLimit = o.Band.Upper
	m.ShortageFee = o.Band.ShortageRate
	m.ExcessFee = o.Band.ExcessRate
	m.FinalizedAt = o.FinalizedAt
	m.DocumentHash = nullableString(o.DocumentHash)
	m.OrderPDFKey = nullableString(o.OrderPDFKey)
	m.AcceptancePDFKey = nullableString(o.AcceptancePDFKey)
	m.ExternalSignatureID = nullableString(o.ExternalSignatureID)
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = *OrderItemModelFromDomain(&o.Items[i])
		m.Items[i].OrderID = o.ID
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line
type OrderItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID        string          `gorm:"type:varchar(20);not null;index"`
	PersonName     string          `gorm:"type:varchar(100);not null"`
	Effort         decimal.Decimal `gorm:"type:decimal(4,2);not null;default:1"`
	BaseFee        int64           `gorm:"not null;default:0"`
	ActualHours    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	TimeLowerLimit decimal.Decimal `gorm:"type:decimal(6,2);not null;default:140"`
	TimeUpperLimit decimal.Decimal `gorm:"type:decimal(6,2);not null;default:180"`
	ShortageRate   int64           `gorm:"not null;default:0"`
	ExcessRate     int64           `gorm:"not null;default:0"`
	Quantity       int             `gorm:"not null;default:1"`
	Price          int64           `gorm:"not null;default:0"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain order Item
func (m *OrderItemModel) ToDomain() *order.Item {
	return &order.Item{
		ID:           m.ID,
		OrderID:      m.OrderID,
		PersonName:   m.PersonName,
		Effort:       m.Effort,
		BaseFee:      m.BaseFee,
		ActualHours:  m.ActualHours,
		LowerLimit:   m.TimeLowerLimit,
		UpperLimit:   m.TimeUpperLimit,
		ShortageRate: m.ShortageRate,
		ExcessRate:   m.ExcessRate,
		Quantity:     m.Quantity,
		Price:        m.Price,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// OrderItemModelFromDomain creates a persistence model from a domain order Item
func OrderItemModelFromDomain(i *order.Item) *OrderItemModel {
	return &OrderItemModel{
		ID:             i.ID,
		OrderID:        i.OrderID,
		PersonName:     i.PersonName,
		Effort:         i.Effort,
		BaseFee:        i.BaseFee,
		ActualHours:    i.ActualHours,
		TimeLowerLimit: i.LowerLimit,
		TimeUpperLimit: i.UpperLimit,
		ShortageRate:   i.ShortageRate,
		ExcessRate:     i.ExcessRate,
		Quantity:       i.Quantity,
		Price:          i.Price,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// ProjectModel is the persistence model for a Project
type ProjectModel struct {
	ID        string    `gorm:"type:varchar(11);primaryKey"`
	Name      string    `gorm:"type:varchar(200);not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project
func (m *ProjectModel) ToDomain() *order.Project {
	return &order.Project{
		Timestamps: shared.Timestamps{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:         m.ID,
		Name:       m.Name,
	}
}

// ProjectModelFromDomain creates a persistence model from a domain Project
func ProjectModelFromDomain(p *order.Project) *ProjectModel {
	return &ProjectModel{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
