package models

import (
	"time"

	"github.com/edi/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// CustomerModel is the persistence model for the Customer aggregate root
type CustomerModel struct {
	ID                     string `gorm:"type:varchar(10);primaryKey"`
	Name                   string `gorm:"type:varchar(200);not null;index"`
	NameKana               string `gorm:"type:varchar(200);index"`
	PostalCode             string `gorm:"type:varchar(8)"`
	Address                string `gorm:"type:varchar(500)"`
	Tel                    string `gorm:"type:varchar(20)"`
	Fax                    string `gorm:"type:varchar(20)"`
	Email                  string `gorm:"type:varchar(254)"`
	CC                     string `gorm:"column:cc;type:text"`
	BCC                    string `gorm:"column:bcc;type:text"`
	RepresentativeName     string `gorm:"type:varchar(100)"`
	RepresentativeNameKana string `gorm:"type:varchar(100)"`
	RepresentativePosition string `gorm:"type:varchar(100)"`
	ResponsiblePerson      string `gorm:"type:varchar(100)"`
	ContactPerson          string `gorm:"type:varchar(100)"`
	RegistrationNo         string `gorm:"type:varchar(14)"`
	BankName               string `gorm:"type:varchar(100)"`
	BankBranch             string `gorm:"type:varchar(100)"`
	AccountType            string `gorm:"type:varchar(10)"`
	AccountNumber          string `gorm:"type:varchar(20)"`
	AccountName            string `gorm:"type:varchar(100)"`

	AggregateModel
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ID:                m.ID,
		CustomerInput: partner.CustomerInput{
			Name:                   m.Name,
			NameKana:               m.NameKana,
			PostalCode:             m.PostalCode,
			Address:                m.Address,
			Tel:                    m.Tel,
			Fax:                    m.Fax,
			Email:                  m.Email,
			CC:                     m.CC,
			BCC:                    m.BCC,
			RepresentativeName:     m.RepresentativeName,
			RepresentativeNameKana: m.RepresentativeNameKana,
			RepresentativePosition: m.RepresentativePosition,
			ResponsiblePerson:      m.ResponsiblePerson,
			ContactPerson:          m.ContactPerson,
			RegistrationNo:         m.RegistrationNo,
			Bank: partner.BankAccount{
				BankName:      m.BankName,
				BankBranch:    m.BankBranch,
				AccountType:   partner.AccountType(m.AccountType),
				AccountNumber: m.AccountNumber,
				AccountName:   m.AccountName,
			},
		},
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		ID:                     c.ID,
		Name:                   c.Name,
		NameKana:               c.NameKana,
		PostalCode:             c.PostalCode,
		Address:                c.Address,
		Tel:                    c.Tel,
		Fax:                    c.Fax,
		Email:                  c.Email,
		CC:                     c.CC,
		BCC:                    c.BCC,
		RepresentativeName:     c.RepresentativeName,
		RepresentativeNameKana: c.RepresentativeNameKana,
		RepresentativePosition: c.RepresentativePosition,
		ResponsiblePerson:      c.ResponsiblePerson,
		ContactPerson:          c.ContactPerson,
		RegistrationNo:         c.RegistrationNo,
		BankName:               c.Bank.BankName,
		BankBranch:             c.Bank.BankBranch,
		AccountType:            string(c.Bank.AccountType),
		AccountNumber:          c.Bank.AccountNumber,
		AccountName:            c.Bank.AccountName,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// PartnerUserModel is a login account of a partner company
type PartnerUserModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"type:varchar(150);not null;uniqueIndex:idx_partner_users_username"`
	Email     string    `gorm:"type:varchar(254)"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PartnerUserModel) TableName() string {
	return "partner_users"
}

// ToDomain converts the persistence model to a domain User
func (m *PartnerUserModel) ToDomain() *partner.User {
	return &partner.User{
		ID:        m.ID,
		Username:  m.Username,
		Email:     m.Email,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
	}
}

// PartnerUserModelFromDomain creates a persistence model from a domain User
func PartnerUserModelFromDomain(u *partner.User) *PartnerUserModel {
	return &PartnerUserModel{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// PartnerProfileModel binds a partner user to the customer it acts for
type PartnerProfileModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_partner_profiles_user_id"`
	CustomerID   string    `gorm:"type:varchar(10);not null;index"`
	IsFirstLogin bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PartnerProfileModel) TableName() string {
	return "partner_profiles"
}

// ToDomain converts the persistence model to a domain Profile
func (m *PartnerProfileModel) ToDomain() *partner.Profile {
	return &partner.Profile{
		ID:           m.ID,
		UserID:       m.UserID,
		CustomerID:   m.CustomerID,
		IsFirstLogin: m.IsFirstLogin,
		CreatedAt:    m.CreatedAt,
	}
}

// PartnerProfileModelFromDomain creates a persistence model from a domain Profile
func PartnerProfileModelFromDomain(p *partner.Profile) *PartnerProfileModel {
	return &PartnerProfileModel{
		ID:           p.ID,
		UserID:       p.UserID,
		CustomerID:   p.CustomerID,
		IsFirstLogin: p.IsFirstLogin,
		CreatedAt:    p.CreatedAt,
	}
}

// ContractProgressModel tracks a customer's onboarding. One row per customer.
type ContractProgressModel struct {
	CustomerID string                 `gorm:"type:varchar(10);primaryKey"`
	Status     partner.ContractStatus `gorm:"type:varchar(20);not null;index"`
	UpdatedAt  time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ContractProgressModel) TableName() string {
	return "contract_progress"
}

// ToDomain converts the persistence model to a domain ContractProgress
func (m *ContractProgressModel) ToDomain() *partner.ContractProgress {
	return &partner.ContractProgress{
		CustomerID: m.CustomerID,
		Status:     m.Status,
		UpdatedAt:  m.UpdatedAt,
	}
}

// SentEmailLogModel records one mail delivered to a customer
type SentEmailLogModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID string    `gorm:"type:varchar(10);not null;index"`
	Subject    string    `gorm:"type:varchar(255);not null"`
	Body       string    `gorm:"type:text;not null"`
	SentAt     time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SentEmailLogModel) TableName() string {
	return "sent_email_logs"
}

// ToDomain converts the persistence model to a domain SentEmailLog
func (m *SentEmailLogModel) ToDomain() *partner.SentEmailLog {
	return &partner.SentEmailLog{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		Subject:    m.Subject,
		Body:       m.Body,
		SentAt:     m.SentAt,
	}
}
